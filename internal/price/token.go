package price

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/errs"
)

// Pair names the base and quote tokens a price is expressed in.
// Prices are smallest quote units per one whole base token.
type Pair struct {
	Base         common.Address
	Quote        common.Address
	BaseDecimals uint8
}

// BaseIsToken0 reports whether the base token sorts first in the pool.
func (p Pair) BaseIsToken0() bool {
	return BaseIsToken0(p.Base, p.Quote)
}

func (p Pair) validate() error {
	if p.Base == p.Quote {
		return errs.Invalid("base and quote are the same token %s", p.Base.Hex())
	}
	return nil
}

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, errs.Invalid("malformed address %q", input)
	}
	return common.HexToAddress(input), nil
}

// BaseIsToken0 compares addresses as unsigned 160-bit integers.
func BaseIsToken0(base, quote common.Address) bool {
	return base.Big().Cmp(quote.Big()) < 0
}

// SortTokens returns the pair ordered as (token0, token1).
func SortTokens(a, b common.Address) (common.Address, common.Address) {
	if BaseIsToken0(a, b) {
		return a, b
	}
	return b, a
}
