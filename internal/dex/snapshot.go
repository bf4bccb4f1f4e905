package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/errs"
	"positionScope/internal/model"
)

// Reader loads pool and position snapshots through read-only contract calls.
type Reader struct {
	caller Caller
	tokens *TokenMetaCache
	logger *zap.Logger
}

func NewReader(caller Caller, tokens *TokenMetaCache, logger *zap.Logger) *Reader {
	if tokens == nil {
		tokens = NewTokenMetaCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{caller: caller, tokens: tokens, logger: logger}
}

// PoolState is a pool snapshot plus the token metadata and global fee
// growth read alongside it.
type PoolState struct {
	Snapshot  model.PoolSnapshot
	Token0    model.TokenMeta
	Token1    model.TokenMeta
	FeeGrowth FeeGrowth
}

// FetchPool reads token0/token1/fee/tickSpacing/slot0, the global fee
// growth and both tokens' metadata. block 0 means latest.
func (r *Reader) FetchPool(ctx context.Context, pool common.Address, block uint64) (PoolState, error) {
	if r.caller == nil {
		return PoolState{}, fmt.Errorf("contract caller is nil")
	}
	poolABI, err := V3PoolABI()
	if err != nil {
		return PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}
	blockPtr := blockArg(block)

	call := func(method string) ([]interface{}, error) {
		return callMethod(ctx, r.caller, pool, poolABI, method, blockPtr)
	}

	values, err := call("token0")
	if err != nil {
		return PoolState{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("token0: %w", err)
	}

	values, err = call("token1")
	if err != nil {
		return PoolState{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("token1: %w", err)
	}

	values, err = call("fee")
	if err != nil {
		return PoolState{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("fee: %w", err)
	}

	values, err = call("tickSpacing")
	if err != nil {
		return PoolState{}, err
	}
	spacingInt, err := asBigInt(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return PoolState{}, fmt.Errorf("tick spacing: %w", err)
	}

	values, err = call("slot0")
	if err != nil {
		return PoolState{}, err
	}
	if len(values) < 2 {
		return PoolState{}, fmt.Errorf("slot0: short result")
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}

	var growth FeeGrowth
	values, err = call("feeGrowthGlobal0X128")
	if err != nil {
		return PoolState{}, err
	}
	if growth.Token0, err = asBigInt(values[0]); err != nil {
		return PoolState{}, fmt.Errorf("fee growth 0: %w", err)
	}
	values, err = call("feeGrowthGlobal1X128")
	if err != nil {
		return PoolState{}, err
	}
	if growth.Token1, err = asBigInt(values[0]); err != nil {
		return PoolState{}, fmt.Errorf("fee growth 1: %w", err)
	}

	meta0, err := tokenMeta(ctx, r.caller, r.tokens, token0, r.logger)
	if err != nil {
		return PoolState{}, err
	}
	meta1, err := tokenMeta(ctx, r.caller, r.tokens, token1, r.logger)
	if err != nil {
		return PoolState{}, err
	}

	r.logger.Debug("pool read",
		zap.String("pool", pool.Hex()),
		zap.Int32("tick", tick),
		zap.Uint64("block", block),
	)

	return PoolState{
		Snapshot: model.PoolSnapshot{
			Pool:           pool,
			Token0:         token0,
			Token1:         token1,
			Token0Decimals: meta0.Decimals,
			Token1Decimals: meta1.Decimals,
			Fee:            uint32(feeInt.Uint64()),
			TickSpacing:    spacing,
			CurrentTick:    &tick,
			SqrtPriceX96:   sqrtPrice,
			BlockNumber:    block,
		},
		Token0:    meta0,
		Token1:    meta1,
		FeeGrowth: growth,
	}, nil
}

// FetchTickFees reads the outside fee accumulators of one tick.
func (r *Reader) FetchTickFees(ctx context.Context, pool common.Address, tick int32, block uint64) (TickFees, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return TickFees{}, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := callMethod(ctx, r.caller, pool, poolABI, "ticks", blockArg(block), big.NewInt(int64(tick)))
	if err != nil {
		return TickFees{}, err
	}
	if len(values) < 4 {
		return TickFees{}, fmt.Errorf("ticks: short result")
	}
	out0, err := asBigInt(values[2])
	if err != nil {
		return TickFees{}, fmt.Errorf("tick %d outside 0: %w", tick, err)
	}
	out1, err := asBigInt(values[3])
	if err != nil {
		return TickFees{}, fmt.Errorf("tick %d outside 1: %w", tick, err)
	}
	return TickFees{Outside0: out0, Outside1: out1}, nil
}

// FetchPosition reads positions(tokenID) from the position manager, checks
// it belongs to the pool, and computes its unclaimed fees from the pool's
// fee growth accumulators.
func (r *Reader) FetchPosition(ctx context.Context, manager common.Address, tokenID *big.Int, pool PoolState, quoteIsToken0 bool, block uint64) (model.PositionSnapshot, error) {
	if tokenID == nil || tokenID.Sign() < 0 {
		return model.PositionSnapshot{}, errs.Invalid("token id is required")
	}
	managerABI, err := PositionManagerABI()
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, r.caller, manager, managerABI, "positions", blockArg(block), tokenID)
	if err != nil {
		return model.PositionSnapshot{}, err
	}
	if len(values) < 12 {
		return model.PositionSnapshot{}, fmt.Errorf("positions: short result")
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("position token0: %w", err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("position token1: %w", err)
	}
	if token0 != pool.Snapshot.Token0 || token1 != pool.Snapshot.Token1 {
		return model.PositionSnapshot{}, errs.Invalid("position %s is not in pool %s", tokenID, pool.Snapshot.Pool.Hex())
	}

	ints := make([]*big.Int, 0, 8)
	for _, idx := range []int{4, 5, 6, 7, 8, 9, 10, 11} {
		v, err := asBigInt(values[idx])
		if err != nil {
			return model.PositionSnapshot{}, fmt.Errorf("positions field %d: %w", idx, err)
		}
		ints = append(ints, v)
	}
	if fee := ints[0]; fee.Uint64() != uint64(pool.Snapshot.Fee) {
		return model.PositionSnapshot{}, errs.Invalid("position %s fee tier %s does not match pool fee %d", tokenID, fee, pool.Snapshot.Fee)
	}
	tickLower, err := int24FromBig(ints[1])
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("tick lower: %w", err)
	}
	tickUpper, err := int24FromBig(ints[2])
	if err != nil {
		return model.PositionSnapshot{}, fmt.Errorf("tick upper: %w", err)
	}

	fees := PositionFees{
		Liquidity:   ints[3],
		InsideLast0: ints[4],
		InsideLast1: ints[5],
		TokensOwed0: ints[6],
		TokensOwed1: ints[7],
		TickLower:   tickLower,
		TickUpper:   tickUpper,
	}

	lower, err := r.FetchTickFees(ctx, pool.Snapshot.Pool, tickLower, block)
	if err != nil {
		return model.PositionSnapshot{}, err
	}
	upper, err := r.FetchTickFees(ctx, pool.Snapshot.Pool, tickUpper, block)
	if err != nil {
		return model.PositionSnapshot{}, err
	}
	tick, err := pool.Snapshot.Tick()
	if err != nil {
		return model.PositionSnapshot{}, err
	}
	inside, err := FeeGrowthInside(tick, tickLower, tickUpper, pool.FeeGrowth, lower, upper)
	if err != nil {
		return model.PositionSnapshot{}, err
	}
	owed0, owed1, err := UnclaimedFees(fees, inside)
	if err != nil {
		return model.PositionSnapshot{}, err
	}

	return model.PositionSnapshot{
		TokenID:       new(big.Int).Set(tokenID),
		Liquidity:     fees.Liquidity,
		TickLower:     tickLower,
		TickUpper:     tickUpper,
		QuoteIsToken0: quoteIsToken0,
		UnclaimedFee0: owed0,
		UnclaimedFee1: owed1,
	}, nil
}

func blockArg(block uint64) *big.Int {
	if block == 0 {
		return nil
	}
	return new(big.Int).SetUint64(block)
}
