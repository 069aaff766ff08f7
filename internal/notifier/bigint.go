package notifier

import (
	"math/big"
	"strings"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/solana"
)

// ApplyDecimals renders a base-unit decimal string as a human amount:
// the integer part is grouped with commas, the fractional part is
// trimmed of trailing zeros and dropped entirely when zero.
func ApplyDecimals(amount string, decimals int) string {
	neg := strings.HasPrefix(amount, "-")
	digits := strings.TrimPrefix(amount, "-")
	if digits == "" {
		digits = "0"
	}

	if decimals > 0 {
		if len(digits) <= decimals {
			digits = strings.Repeat("0", decimals-len(digits)+1) + digits
		}
		split := len(digits) - decimals
		intPart, frac := digits[:split], digits[split:]
		frac = strings.TrimRight(frac, "0")
		digits = intPart
		if frac != "" {
			digits = groupThousands(intPart) + "." + frac
			if neg {
				return "-" + digits
			}
			return digits
		}
	}

	out := groupThousands(digits)
	if neg && out != "0" {
		return "-" + out
	}
	return out
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// BalanceBySwaps nets the swap history into the account's current
// position in token base units: amounts bought in minus amounts sold.
func BalanceBySwaps(swaps []*domain.SwapRecord, token string) *big.Int {
	balance := new(big.Int)
	for _, s := range swaps {
		if s.TokenIn == token {
			if v, ok := new(big.Int).SetString(s.AmountIn, 10); ok {
				balance.Add(balance, v)
			}
		}
		if s.TokenOut == token {
			if v, ok := new(big.Int).SetString(s.AmountOut, 10); ok {
				balance.Sub(balance, v)
			}
		}
	}
	return balance
}

// solProfit nets the SOL legs of the swap history: SOL received minus
// SOL spent, in lamports.
func solProfit(swaps []*domain.SwapRecord) *big.Int {
	return BalanceBySwaps(swaps, solana.WrappedSOLMint)
}
