// Package stats derives rates and significance figures from raw counts.
package stats

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	RatePlaces       = 3
	ConversionPlaces = 4
	LiftPlaces       = 5
	ZPlaces          = 3
)

// Round rounds half away from zero at the given number of decimal places,
// matching ROUND on a Postgres numeric. Exact ties therefore round up in
// magnitude (2.5 becomes 3) where round-half-to-even would pick 2.
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Rate returns num/den rounded to three decimals, or nil when den is not
// positive. It never substitutes zero for an undefined rate.
func Rate(num, den int64) *float64 {
	if den <= 0 {
		return nil
	}
	r := decimal.NewFromInt(num).DivRound(decimal.NewFromInt(den), RatePlaces).InexactFloat64()
	return &r
}

// TwoProportion holds the outcome of comparing two conversion proportions.
// SE and Z are nil when either sample is empty or the pooled error is zero.
type TwoProportion struct {
	PA      float64
	PB      float64
	LiftAbs float64
	SE      *float64
	Z       *float64
}

// TwoProportionTest compares xA/nA against xB/nB. An empty sample has
// proportion 0.
func TwoProportionTest(nA, xA, nB, xB int64) TwoProportion {
	pA := proportion(xA, nA)
	pB := proportion(xB, nB)
	lift := pB - pA

	out := TwoProportion{
		PA:      pA,
		PB:      pB,
		LiftAbs: Round(lift, LiftPlaces),
	}
	if nA <= 0 || nB <= 0 {
		return out
	}

	se := math.Sqrt(pA*(1-pA)/float64(nA) + pB*(1-pB)/float64(nB))
	out.SE = &se
	if se == 0 || math.IsNaN(se) {
		return out
	}
	z := Round(lift/se, ZPlaces)
	out.Z = &z
	return out
}

func proportion(x, n int64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(x) / float64(n)
}
