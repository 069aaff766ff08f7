package notifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/indexer"
	"github.com/whooooop/agent007/internal/solana"
)

const templateMint = "MintXo5nf6vNsvKicqRmGs8rMdEsVZ4p5diYgvgEUDqz"

func templateHistory() *indexer.AccountTokenSwaps {
	return &indexer.AccountTokenSwaps{
		Swaps: []*domain.SwapRecord{
			{
				Signature: "sig2",
				Account:   "acc1",
				TokenIn:   solana.WrappedSOLMint,
				TokenOut:  templateMint,
				AmountIn:  "90000000",
				AmountOut: "600000",
				BlockTime: 2000,
			},
			{
				Signature: "sig1",
				Account:   "acc1",
				TokenIn:   templateMint,
				TokenOut:  solana.WrappedSOLMint,
				AmountIn:  "1500000",
				AmountOut: "50000000",
				BlockTime: 1000,
			},
		},
		Tokens: map[string]*domain.TokenMetadata{
			templateMint: {Address: templateMint, Name: "My Token", Symbol: "MTK", Decimals: 6},
		},
	}
}

func TestRenderSwap(t *testing.T) {
	history := templateHistory()
	msg := RenderSwap(history.Swaps[1], history, templateMint)

	assert.Contains(t, msg, "My Token (MTK)")
	assert.Contains(t, msg, templateMint)
	assert.Contains(t, msg, "dexscreener.com/solana/"+templateMint)
	assert.Contains(t, msg, "solscan.io/tx/sig1")
	assert.Contains(t, msg, "jup.ag/swap/SOL-"+templateMint)

	// History markers for both directions.
	assert.Contains(t, msg, "buy")
	assert.Contains(t, msg, "sell")

	// Bought 1.5, sold 0.6: position is 0.9 MTK.
	assert.Contains(t, msg, "Balance: <b>0.9</b>")
	// Received 0.09 SOL, spent 0.05: up 0.04.
	assert.Contains(t, msg, "SOL result: <b>0.04</b>")
}

func TestRenderSwap_UnknownTokenFallsBackToAddress(t *testing.T) {
	history := templateHistory()
	history.Tokens = map[string]*domain.TokenMetadata{}

	msg := RenderSwap(history.Swaps[0], history, templateMint)

	short := templateMint[:4] + "…" + templateMint[len(templateMint)-4:]
	assert.Contains(t, msg, short)
}

func TestRenderSwap_HistoryCapped(t *testing.T) {
	history := templateHistory()
	for i := 0; i < 10; i++ {
		history.Swaps = append(history.Swaps, &domain.SwapRecord{
			Signature: "bulk",
			TokenIn:   templateMint,
			TokenOut:  solana.WrappedSOLMint,
			AmountIn:  "1",
			AmountOut: "1",
		})
	}

	msg := RenderSwap(history.Swaps[0], history, templateMint)

	shown := strings.Count(msg, "buy") + strings.Count(msg, "sell")
	assert.LessOrEqual(t, shown, historyDepth)
}

func TestRenderSwap_EscapesMetadata(t *testing.T) {
	history := templateHistory()
	history.Tokens[templateMint].Name = "<script>alert(1)</script>"
	history.Tokens[templateMint].Symbol = "X<Y"

	msg := RenderSwap(history.Swaps[0], history, templateMint)

	assert.NotContains(t, msg, "<script>")
	assert.Contains(t, msg, "&lt;script&gt;")
}
