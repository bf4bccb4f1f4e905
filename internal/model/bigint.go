package model

import (
	"math/big"
	"strings"

	"positionScope/internal/errs"
)

// ParseBigInt parses a base-10 integer string. Empty input yields nil.
func ParseBigInt(field, value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errs.Invalid("%s: malformed integer %q", field, value)
	}
	return parsed, nil
}

// ParseRequiredBigInt is ParseBigInt that rejects empty input.
func ParseRequiredBigInt(field, value string) (*big.Int, error) {
	parsed, err := ParseBigInt(field, value)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, errs.Invalid("%s is required", field)
	}
	return parsed, nil
}

// FormatBigInt renders value as a base-10 string, "0" for nil.
func FormatBigInt(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}

func formatOptionalBigInt(value *big.Int) string {
	if value == nil {
		return ""
	}
	return value.String()
}
