package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

// PoolSnapshot is the pool state a valuation runs against. At least one of
// CurrentTick and SqrtPriceX96 must be set.
type PoolSnapshot struct {
	Pool           common.Address
	Token0         common.Address
	Token1         common.Address
	Token0Decimals uint8
	Token1Decimals uint8
	Fee            uint32
	TickSpacing    int32
	CurrentTick    *int32
	SqrtPriceX96   *big.Int
	BlockNumber    uint64
}

// Tick returns the current tick, deriving it from the sqrt price when the
// snapshot carries no tick.
func (p PoolSnapshot) Tick() (int32, error) {
	if p.CurrentTick != nil {
		return *p.CurrentTick, nil
	}
	if p.SqrtPriceX96 != nil {
		return v3math.SqrtRatioToTick(p.SqrtPriceX96)
	}
	return 0, errs.NotFound("pool %s has no price data", p.Pool.Hex())
}

// SqrtPrice returns the current sqrt price, deriving it from the tick when
// the snapshot carries no sqrt price.
func (p PoolSnapshot) SqrtPrice() (*big.Int, error) {
	if p.SqrtPriceX96 != nil {
		return p.SqrtPriceX96, nil
	}
	if p.CurrentTick != nil {
		return v3math.TickToSqrtRatio(*p.CurrentTick)
	}
	return nil, errs.NotFound("pool %s has no price data", p.Pool.Hex())
}

// PositionSnapshot is the on-chain state of one liquidity position.
type PositionSnapshot struct {
	TokenID       *big.Int
	Liquidity     *big.Int
	TickLower     int32
	TickUpper     int32
	QuoteIsToken0 bool
	// Uncollected fees in token units, if known.
	UnclaimedFee0 *big.Int
	UnclaimedFee1 *big.Int
}

// PoolSnapshotRecord is the JSON form of a PoolSnapshot.
type PoolSnapshotRecord struct {
	Pool           string `json:"pool,omitempty"`
	Token0         string `json:"token0"`
	Token1         string `json:"token1"`
	Token0Decimals uint8  `json:"token0_decimals"`
	Token1Decimals uint8  `json:"token1_decimals"`
	Fee            uint32 `json:"fee,omitempty"`
	TickSpacing    int32  `json:"tick_spacing"`
	Tick           *int32 `json:"tick,omitempty"`
	SqrtPriceX96   string `json:"sqrt_price_x96,omitempty"`
	BlockNumber    uint64 `json:"block_number,omitempty"`
}

// Parse validates the record and converts it into a PoolSnapshot.
func (r PoolSnapshotRecord) Parse() (PoolSnapshot, error) {
	token0, err := parseAddress("token0", r.Token0)
	if err != nil {
		return PoolSnapshot{}, err
	}
	token1, err := parseAddress("token1", r.Token1)
	if err != nil {
		return PoolSnapshot{}, err
	}
	var pool common.Address
	if r.Pool != "" {
		if pool, err = parseAddress("pool", r.Pool); err != nil {
			return PoolSnapshot{}, err
		}
	}
	sqrtPrice, err := ParseBigInt("sqrt_price_x96", r.SqrtPriceX96)
	if err != nil {
		return PoolSnapshot{}, err
	}
	if r.Tick == nil && sqrtPrice == nil {
		return PoolSnapshot{}, errs.NotFound("pool %s has no tick or sqrt price", r.Pool)
	}

	snapshot := PoolSnapshot{
		Pool:           pool,
		Token0:         token0,
		Token1:         token1,
		Token0Decimals: r.Token0Decimals,
		Token1Decimals: r.Token1Decimals,
		Fee:            r.Fee,
		TickSpacing:    r.TickSpacing,
		SqrtPriceX96:   sqrtPrice,
		BlockNumber:    r.BlockNumber,
	}
	if r.Tick != nil {
		tick := *r.Tick
		snapshot.CurrentTick = &tick
	}
	return snapshot, nil
}

// NewPoolSnapshotRecord renders a PoolSnapshot for JSON output.
func NewPoolSnapshotRecord(p PoolSnapshot) PoolSnapshotRecord {
	rec := PoolSnapshotRecord{
		Token0:         p.Token0.Hex(),
		Token1:         p.Token1.Hex(),
		Token0Decimals: p.Token0Decimals,
		Token1Decimals: p.Token1Decimals,
		Fee:            p.Fee,
		TickSpacing:    p.TickSpacing,
		Tick:           p.CurrentTick,
		SqrtPriceX96:   formatOptionalBigInt(p.SqrtPriceX96),
		BlockNumber:    p.BlockNumber,
	}
	if p.Pool != (common.Address{}) {
		rec.Pool = p.Pool.Hex()
	}
	return rec
}

// PositionSnapshotRecord is the JSON form of a PositionSnapshot.
type PositionSnapshotRecord struct {
	TokenID       string `json:"token_id,omitempty"`
	Liquidity     string `json:"liquidity"`
	TickLower     int32  `json:"tick_lower"`
	TickUpper     int32  `json:"tick_upper"`
	QuoteIsToken0 bool   `json:"quote_is_token0"`
	UnclaimedFee0 string `json:"unclaimed_fee0,omitempty"`
	UnclaimedFee1 string `json:"unclaimed_fee1,omitempty"`
}

// Parse validates the record and converts it into a PositionSnapshot.
func (r PositionSnapshotRecord) Parse() (PositionSnapshot, error) {
	tokenID, err := ParseBigInt("token_id", r.TokenID)
	if err != nil {
		return PositionSnapshot{}, err
	}
	liquidity, err := ParseRequiredBigInt("liquidity", r.Liquidity)
	if err != nil {
		return PositionSnapshot{}, err
	}
	if liquidity.Sign() < 0 {
		return PositionSnapshot{}, errs.Invalid("liquidity must not be negative")
	}
	fee0, err := ParseBigInt("unclaimed_fee0", r.UnclaimedFee0)
	if err != nil {
		return PositionSnapshot{}, err
	}
	fee1, err := ParseBigInt("unclaimed_fee1", r.UnclaimedFee1)
	if err != nil {
		return PositionSnapshot{}, err
	}
	if r.TickLower >= r.TickUpper {
		return PositionSnapshot{}, errs.Invalid("tick lower %d must be below tick upper %d", r.TickLower, r.TickUpper)
	}

	return PositionSnapshot{
		TokenID:       tokenID,
		Liquidity:     liquidity,
		TickLower:     r.TickLower,
		TickUpper:     r.TickUpper,
		QuoteIsToken0: r.QuoteIsToken0,
		UnclaimedFee0: fee0,
		UnclaimedFee1: fee1,
	}, nil
}

// NewPositionSnapshotRecord renders a PositionSnapshot for JSON output.
func NewPositionSnapshotRecord(p PositionSnapshot) PositionSnapshotRecord {
	return PositionSnapshotRecord{
		TokenID:       formatOptionalBigInt(p.TokenID),
		Liquidity:     FormatBigInt(p.Liquidity),
		TickLower:     p.TickLower,
		TickUpper:     p.TickUpper,
		QuoteIsToken0: p.QuoteIsToken0,
		UnclaimedFee0: formatOptionalBigInt(p.UnclaimedFee0),
		UnclaimedFee1: formatOptionalBigInt(p.UnclaimedFee1),
	}
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, errs.Invalid("%s: malformed address %q", field, value)
	}
	return common.HexToAddress(value), nil
}

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol,omitempty"`
	Name     string         `json:"name,omitempty"`
}

// SnapshotRecord is a pool and, optionally, one of its positions as read at
// a block. It is the file format shared by the snapshot and value commands.
type SnapshotRecord struct {
	Pool           PoolSnapshotRecord      `json:"pool"`
	Position       *PositionSnapshotRecord `json:"position,omitempty"`
	Token0         *TokenMeta              `json:"token0_meta,omitempty"`
	Token1         *TokenMeta              `json:"token1_meta,omitempty"`
	BlockTimestamp uint64                  `json:"block_timestamp,omitempty"`
}
