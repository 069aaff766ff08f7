package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/solana"
)

func TestApplyDecimals(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
	}{
		{"no decimals", "12345", 0, "12,345"},
		{"whole amount", "5000000000", 9, "5"},
		{"fraction trimmed", "5100000000", 9, "5.1"},
		{"full fraction", "123456789", 9, "0.123456789"},
		{"sub one", "42", 9, "0.000000042"},
		{"zero", "0", 9, "0"},
		{"empty", "", 6, "0"},
		{"grouping large", "2773565633162", 0, "2,773,565,633,162"},
		{"grouped with fraction", "2773565633162", 6, "2,773,565.633162"},
		{"negative", "-260000000", 9, "-0.26"},
		{"negative grouped", "-1234567000000", 6, "-1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyDecimals(tt.amount, tt.decimals))
		})
	}
}

func TestBalanceBySwaps(t *testing.T) {
	mint := "MintA"
	swaps := []*domain.SwapRecord{
		{TokenIn: mint, AmountIn: "1000", TokenOut: solana.WrappedSOLMint, AmountOut: "50"},
		{TokenIn: mint, AmountIn: "500", TokenOut: solana.WrappedSOLMint, AmountOut: "30"},
		{TokenIn: solana.WrappedSOLMint, AmountIn: "90", TokenOut: mint, AmountOut: "600"},
	}

	balance := BalanceBySwaps(swaps, mint)
	assert.Equal(t, "900", balance.String())

	// SOL view of the same history: spent 80, received 90.
	profit := solProfit(swaps)
	assert.Equal(t, "10", profit.String())
}

func TestBalanceBySwaps_Empty(t *testing.T) {
	assert.Equal(t, "0", BalanceBySwaps(nil, "MintA").String())
}
