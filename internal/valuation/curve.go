package valuation

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/liquidity"
	"positionScope/internal/price"
)

// DefaultCurvePoints is the number of intervals a PnL curve is split into.
const DefaultCurvePoints = 150

// CurveParams describes a position and the price window to sweep.
type CurveParams struct {
	Liquidity    *big.Int
	TickLower    int32
	TickUpper    int32
	InitialValue *big.Int
	Pair         price.Pair
	TickSpacing  int32
	MinPrice     *big.Int
	MaxPrice     *big.Int
	NumPoints    int
}

// CurvePoint is the position state at one sweep price.
type CurvePoint struct {
	Price      *big.Int
	Tick       int32
	Value      *big.Int
	PnL        *big.Int
	PnLPercent float64
	Phase      Phase
}

// GeneratePnLCurve samples NumPoints+1 evenly spaced prices between MinPrice
// and MaxPrice, inclusive, and values the position at each.
func GeneratePnLCurve(params CurveParams) ([]CurvePoint, error) {
	if params.MinPrice == nil || params.MinPrice.Sign() <= 0 {
		return nil, errs.Invalid("min price must be positive")
	}
	if params.MaxPrice == nil || params.MaxPrice.Cmp(params.MinPrice) < 0 {
		return nil, errs.Invalid("max price must be at least min price")
	}
	if err := liquidity.ValidateRange(params.TickLower, params.TickUpper); err != nil {
		return nil, err
	}
	numPoints := params.NumPoints
	if numPoints <= 0 {
		numPoints = DefaultCurvePoints
	}

	baseIsToken0 := params.Pair.BaseIsToken0()
	span := new(big.Int).Sub(params.MaxPrice, params.MinPrice)
	steps := big.NewInt(int64(numPoints))

	points := make([]CurvePoint, 0, numPoints+1)
	for i := 0; i <= numPoints; i++ {
		p := new(big.Int).Mul(span, big.NewInt(int64(i)))
		p.Quo(p, steps)
		p.Add(p, params.MinPrice)

		tick, err := price.PriceToTick(p, params.TickSpacing, params.Pair)
		if err != nil {
			return nil, err
		}
		value, err := liquidity.PositionValue(params.Liquidity, tick, params.TickLower, params.TickUpper, p, baseIsToken0, params.Pair.BaseDecimals)
		if err != nil {
			return nil, err
		}
		pnl := CalculatePnL(value, params.InitialValue)

		points = append(points, CurvePoint{
			Price:      p,
			Tick:       tick,
			Value:      value,
			PnL:        pnl.Amount,
			PnLPercent: pnl.Percent,
			Phase:      DeterminePhase(tick, params.TickLower, params.TickUpper),
		})
	}
	return points, nil
}
