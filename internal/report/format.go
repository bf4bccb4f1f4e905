package report

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"positionScope/internal/errs"
)

// FormatAmount renders an integer amount of smallest units as a decimal
// string with trailing zeros trimmed.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// ParseAmount converts a human decimal such as "2500.25" into smallest
// units. Digits beyond decimals are truncated toward zero.
func ParseAmount(input string, decimals uint8) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errs.Invalid("empty amount")
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return nil, errs.Invalid("malformed amount %q", input)
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}

// ParsePositiveAmount is ParseAmount for values that must stay above zero
// after truncation, such as prices.
func ParsePositiveAmount(input string, decimals uint8) (*big.Int, error) {
	v, err := ParseAmount(input, decimals)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, errs.Invalid("amount %q must be positive at %d decimals", input, decimals)
	}
	return v, nil
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}
