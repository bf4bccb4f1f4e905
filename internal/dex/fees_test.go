package dex

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/errs"
)

var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

func TestFeeGrowthInsideInRange(t *testing.T) {
	global := FeeGrowth{Token0: q128(5), Token1: q128(10)}
	lower := TickFees{Outside0: q128(1), Outside1: q128(4)}
	upper := TickFees{Outside0: q128(1), Outside1: q128(3)}

	inside, err := FeeGrowthInside(150, 100, 200, global, lower, upper)
	require.NoError(t, err)
	assert.Equal(t, q128(3).String(), inside.Token0.String())
	assert.Equal(t, q128(3).String(), inside.Token1.String())
}

func TestFeeGrowthInsideOutOfRange(t *testing.T) {
	global := FeeGrowth{Token0: q128(5), Token1: q128(5)}
	lower := TickFees{Outside0: q128(1), Outside1: q128(4)}
	upper := TickFees{Outside0: q128(3), Outside1: q128(1)}

	// below: inside = lowerOutside - upperOutside
	below, err := FeeGrowthInside(50, 100, 200, global, lower, upper)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Sub(two256, q128(2)).String(), below.Token0.String())
	assert.Equal(t, q128(3).String(), below.Token1.String())

	// above: inside = upperOutside - lowerOutside
	above, err := FeeGrowthInside(200, 100, 200, global, lower, upper)
	require.NoError(t, err)
	assert.Equal(t, q128(2).String(), above.Token0.String())
	assert.Equal(t, new(big.Int).Sub(two256, q128(3)).String(), above.Token1.String())
}

func TestUnclaimedFeesWraps(t *testing.T) {
	liquidity := big.NewInt(1_000_000)
	pos := PositionFees{
		Liquidity:   liquidity,
		InsideLast0: q128(1),
		InsideLast1: new(big.Int).Sub(two256, q128(1)),
		TokensOwed0: big.NewInt(7),
	}
	fee0, fee1, err := UnclaimedFees(pos, FeeGrowth{Token0: q128(3), Token1: q128(3)})
	require.NoError(t, err)
	assert.Equal(t, "2000007", fee0.String())
	assert.Equal(t, "4000000", fee1.String())
}

func TestUnclaimedFeesRejectsOversizedGrowth(t *testing.T) {
	_, _, err := UnclaimedFees(PositionFees{Liquidity: big.NewInt(1)}, FeeGrowth{Token0: two256})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = FeeGrowthInside(0, -10, 10, FeeGrowth{Token0: big.NewInt(-1)}, TickFees{}, TickFees{})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
