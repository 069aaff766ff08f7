package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/indexer"
	"github.com/whooooop/agent007/internal/solana"
)

// historyDepth limits how many recent swaps a message shows.
const historyDepth = 5

// RenderSwap builds the HTML notification for one fresh swap. It
// shows the swap itself, the account's recent history against the
// counterparty token, the resulting token balance and the net SOL
// result of that history.
func RenderSwap(swap *domain.SwapRecord, history *indexer.AccountTokenSwaps, mint string) string {
	var b strings.Builder

	token := history.Tokens[mint]
	name := tokenLabel(token, mint)

	b.WriteString(fmt.Sprintf("<b>%s</b> · %s\n", html.EscapeString(name), renderLeg(swap, mint, history.Tokens)))
	b.WriteString(fmt.Sprintf("<code>%s</code>\n", html.EscapeString(mint)))
	b.WriteString(fmt.Sprintf("Account: <code>%s</code>\n\n", html.EscapeString(swap.Account)))

	if len(history.Swaps) > 0 {
		b.WriteString("<b>Recent swaps</b>\n")
		shown := history.Swaps
		if len(shown) > historyDepth {
			shown = shown[:historyDepth]
		}
		for _, s := range shown {
			marker := "\U0001F534 sell" // red circle
			if s.TokenIn == mint {
				marker = "\U0001F7E2 buy" // green circle
			}
			ts := time.Unix(s.BlockTime, 0).UTC().Format("02 Jan 15:04")
			b.WriteString(fmt.Sprintf("%s · %s · %s\n", marker, ts, renderLeg(s, mint, history.Tokens)))
		}
		b.WriteString("\n")
	}

	decimals := 0
	if token != nil {
		decimals = token.Decimals
	}
	balance := BalanceBySwaps(history.Swaps, mint)
	profit := solProfit(history.Swaps)
	b.WriteString(fmt.Sprintf("Balance: <b>%s</b>\n", ApplyDecimals(balance.String(), decimals)))
	b.WriteString(fmt.Sprintf("SOL result: <b>%s</b>\n\n", ApplyDecimals(profit.String(), 9)))

	b.WriteString(fmt.Sprintf(
		"<a href=\"https://dexscreener.com/solana/%s\">Chart</a> · "+
			"<a href=\"https://solscan.io/tx/%s\">Transaction</a> · "+
			"<a href=\"https://jup.ag/swap/SOL-%s\">Trade</a>",
		mint, swap.Signature, mint,
	))

	return b.String()
}

// renderLeg formats one swap oriented around the counterparty mint:
// buys read "received X for Y", sells read "sold X for Y".
func renderLeg(s *domain.SwapRecord, mint string, tokens map[string]*domain.TokenMetadata) string {
	in := formatAmount(s.AmountIn, s.TokenIn, tokens)
	out := formatAmount(s.AmountOut, s.TokenOut, tokens)
	if s.TokenIn == mint {
		return fmt.Sprintf("received %s for %s", in, out)
	}
	return fmt.Sprintf("sold %s for %s", out, in)
}

func formatAmount(amount, mint string, tokens map[string]*domain.TokenMetadata) string {
	decimals := 0
	label := shortAddr(mint)
	if mint == solana.WrappedSOLMint {
		decimals = 9
		label = "SOL"
	} else if t := tokens[mint]; t != nil {
		decimals = t.Decimals
		if t.Symbol != "" {
			label = t.Symbol
		}
	}
	return fmt.Sprintf("%s %s", ApplyDecimals(amount, decimals), html.EscapeString(label))
}

func tokenLabel(t *domain.TokenMetadata, mint string) string {
	if t == nil {
		return shortAddr(mint)
	}
	switch {
	case t.Name != "" && t.Symbol != "":
		return fmt.Sprintf("%s (%s)", t.Name, t.Symbol)
	case t.Name != "":
		return t.Name
	case t.Symbol != "":
		return t.Symbol
	default:
		return shortAddr(mint)
	}
}

func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + "…" + addr[len(addr)-4:]
}
