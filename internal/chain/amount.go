package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a base-unit amount in whole units of cur, e.g.
// "0.0021 ETH".
func FormatAmount(amount *big.Int, cur NativeCurrency) string {
	if amount == nil {
		amount = new(big.Int)
	}
	d := decimal.NewFromBigInt(amount, -int32(cur.Decimals))
	if cur.Symbol == "" {
		return d.String()
	}
	return d.String() + " " + cur.Symbol
}

// FormatGwei renders a wei amount in gwei.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return decimal.NewFromBigInt(wei, -9).String() + " gwei"
}

// ParseAmount parses a decimal amount in whole units of cur ("1.5") into
// base units. A trailing symbol is accepted ("1.5 ETH"). Amounts finer than
// the currency's decimals are rejected.
func ParseAmount(text string, cur NativeCurrency) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if cur.Symbol != "" {
		text = strings.TrimSpace(strings.TrimSuffix(text, cur.Symbol))
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q: must not be negative", text)
	}
	units := d.Shift(int32(cur.Decimals))
	if !units.Equal(units.Truncate(0)) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimals", text, cur.Decimals)
	}
	return units.BigInt(), nil
}
