package dex

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

var (
	poolAddr    = common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640")
	managerAddr = common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")
	usdc        = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	weth        = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

type fakeCaller struct {
	t       *testing.T
	results map[string][]byte
	calls   int
}

func newFakeCaller(t *testing.T) *fakeCaller {
	return &fakeCaller{t: t, results: make(map[string][]byte)}
}

func callKey(to common.Address, data []byte) string {
	return to.Hex() + ":" + hex.EncodeToString(data)
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	out, ok := f.results[callKey(*msg.To, msg.Data)]
	if !ok {
		return nil, fmt.Errorf("execution reverted")
	}
	return out, nil
}

func (f *fakeCaller) stub(to common.Address, parsed abi.ABI, method string, args []interface{}, outputs ...interface{}) {
	f.t.Helper()
	data, err := parsed.Pack(method, args...)
	require.NoError(f.t, err)
	out, err := parsed.Methods[method].Outputs.Pack(outputs...)
	require.NoError(f.t, err)
	f.results[callKey(to, data)] = out
}

func q128(n int64) *big.Int {
	return new(big.Int).Lsh(big.NewInt(n), 128)
}

func stubPool(t *testing.T, f *fakeCaller, tick int32) {
	poolABI, err := V3PoolABI()
	require.NoError(t, err)
	stringABI, err := erc20StringABI.get()
	require.NoError(t, err)
	bytes32ABI, err := erc20Bytes32ABI.get()
	require.NoError(t, err)

	sqrtPrice, err := v3math.TickToSqrtRatio(tick)
	require.NoError(t, err)

	f.stub(poolAddr, poolABI, "token0", nil, usdc)
	f.stub(poolAddr, poolABI, "token1", nil, weth)
	f.stub(poolAddr, poolABI, "fee", nil, big.NewInt(500))
	f.stub(poolAddr, poolABI, "tickSpacing", nil, big.NewInt(10))
	f.stub(poolAddr, poolABI, "slot0", nil, sqrtPrice, big.NewInt(int64(tick)), uint16(1), uint16(2), uint16(3), uint8(0), true)
	f.stub(poolAddr, poolABI, "feeGrowthGlobal0X128", nil, q128(5))
	f.stub(poolAddr, poolABI, "feeGrowthGlobal1X128", nil, big.NewInt(0))

	f.stub(usdc, stringABI, "decimals", nil, uint8(6))
	f.stub(usdc, stringABI, "symbol", nil, "USDC")
	f.stub(usdc, stringABI, "name", nil, "USD Coin")
	f.stub(weth, stringABI, "decimals", nil, uint8(18))
	var symbol [32]byte
	copy(symbol[:], "WETH")
	f.stub(weth, bytes32ABI, "symbol", nil, symbol)
}

func TestFetchPool(t *testing.T) {
	f := newFakeCaller(t)
	stubPool(t, f, 202500)

	reader := NewReader(f, nil, nil)
	state, err := reader.FetchPool(context.Background(), poolAddr, 0)
	require.NoError(t, err)

	snap := state.Snapshot
	assert.Equal(t, usdc, snap.Token0)
	assert.Equal(t, weth, snap.Token1)
	assert.Equal(t, uint8(6), snap.Token0Decimals)
	assert.Equal(t, uint8(18), snap.Token1Decimals)
	assert.Equal(t, uint32(500), snap.Fee)
	assert.Equal(t, int32(10), snap.TickSpacing)
	require.NotNil(t, snap.CurrentTick)
	assert.Equal(t, int32(202500), *snap.CurrentTick)
	assert.Equal(t, "USDC", state.Token0.Symbol)
	assert.Equal(t, "USD Coin", state.Token0.Name)
	assert.Equal(t, "WETH", state.Token1.Symbol)
	assert.Equal(t, "", state.Token1.Name)
	assert.Equal(t, q128(5).String(), state.FeeGrowth.Token0.String())

	// token metadata comes from the cache on the second read
	before := f.calls
	_, err = reader.FetchPool(context.Background(), poolAddr, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, f.calls-before)
}

func TestFetchPoolMissingDecimals(t *testing.T) {
	f := newFakeCaller(t)
	stubPool(t, f, 0)
	stringABI, err := erc20StringABI.get()
	require.NoError(t, err)
	data, err := stringABI.Pack("decimals")
	require.NoError(t, err)
	delete(f.results, callKey(weth, data))

	_, err = NewReader(f, nil, nil).FetchPool(context.Background(), poolAddr, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), weth.Hex())
}

func TestFetchPosition(t *testing.T) {
	f := newFakeCaller(t)
	stubPool(t, f, 202500)
	poolABI, err := V3PoolABI()
	require.NoError(t, err)
	managerABI, err := PositionManagerABI()
	require.NoError(t, err)

	liquidity := big.NewInt(1_000_000_000_000_000_000)
	tokenID := big.NewInt(4242)
	f.stub(managerAddr, managerABI, "positions", []interface{}{tokenID},
		big.NewInt(0), common.Address{}, usdc, weth, big.NewInt(500),
		big.NewInt(201000), big.NewInt(204000), liquidity,
		q128(1), big.NewInt(0), big.NewInt(7), big.NewInt(0),
	)
	for _, tick := range []int64{201000, 204000} {
		f.stub(poolAddr, poolABI, "ticks", []interface{}{big.NewInt(tick)},
			big.NewInt(1), big.NewInt(1), q128(1), big.NewInt(0),
			big.NewInt(0), big.NewInt(0), uint32(0), true,
		)
	}

	reader := NewReader(f, nil, nil)
	state, err := reader.FetchPool(context.Background(), poolAddr, 0)
	require.NoError(t, err)

	pos, err := reader.FetchPosition(context.Background(), managerAddr, tokenID, state, true, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(201000), pos.TickLower)
	assert.Equal(t, int32(204000), pos.TickUpper)
	assert.Equal(t, liquidity.String(), pos.Liquidity.String())
	assert.True(t, pos.QuoteIsToken0)
	// inside = 5-1-1, last = 1, so 2*L plus 7 owed
	assert.Equal(t, "2000000000000000007", pos.UnclaimedFee0.String())
	assert.Equal(t, "0", pos.UnclaimedFee1.String())
}

func TestFetchPositionWrongPool(t *testing.T) {
	f := newFakeCaller(t)
	stubPool(t, f, 202500)
	managerABI, err := PositionManagerABI()
	require.NoError(t, err)
	tokenID := big.NewInt(1)
	f.stub(managerAddr, managerABI, "positions", []interface{}{tokenID},
		big.NewInt(0), common.Address{}, usdc, common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), big.NewInt(500),
		big.NewInt(-10), big.NewInt(10), big.NewInt(1),
		big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0),
	)

	reader := NewReader(f, nil, nil)
	state, err := reader.FetchPool(context.Background(), poolAddr, 0)
	require.NoError(t, err)
	_, err = reader.FetchPosition(context.Background(), managerAddr, tokenID, state, false, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
