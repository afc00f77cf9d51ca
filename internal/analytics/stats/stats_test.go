package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name string
		num  int64
		den  int64
		want *float64
	}{
		{name: "zero denominator", num: 5, den: 0, want: nil},
		{name: "negative denominator", num: 5, den: -1, want: nil},
		{name: "zero numerator", num: 0, den: 7, want: ptr(0)},
		{name: "rounds to three places", num: 1, den: 3, want: ptr(0.333)},
		{name: "rounds half up", num: 1, den: 8, want: ptr(0.125)},
		{name: "rounds 2/3", num: 2, den: 3, want: ptr(0.667)},
		{name: "can exceed one", num: 12, den: 10, want: ptr(1.2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rate(tt.num, tt.den)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, Round(0.125, 2))
	assert.Equal(t, -0.13, Round(-0.125, 2))
	assert.Equal(t, 0.05, Round(0.05000000000000002, 5))
}

func TestRoundTiesDoNotFavourEven(t *testing.T) {
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, 0.0125, Round(0.01245, 4))
	assert.Equal(t, 1.362, Round(1.3615, 3))
}

func TestTwoProportionKnownValues(t *testing.T) {
	got := TwoProportionTest(100, 10, 100, 15)

	assert.InDelta(t, 0.10, got.PA, 1e-12)
	assert.InDelta(t, 0.15, got.PB, 1e-12)
	assert.Equal(t, 0.05, got.LiftAbs)
	require.NotNil(t, got.SE)
	assert.InDelta(t, math.Sqrt(0.00135), *got.SE, 1e-12)
	assert.InDelta(t, 0.03674, *got.SE, 1e-5)
	require.NotNil(t, got.Z)
	assert.Equal(t, 1.361, *got.Z)
}

func TestTwoProportionNegativeLift(t *testing.T) {
	got := TwoProportionTest(100, 15, 100, 10)

	assert.Equal(t, -0.05, got.LiftAbs)
	require.NotNil(t, got.Z)
	assert.Equal(t, -1.361, *got.Z)
}

func TestTwoProportionEmptySample(t *testing.T) {
	got := TwoProportionTest(0, 0, 50, 5)

	assert.Equal(t, 0.0, got.PA)
	assert.Equal(t, 0.1, got.PB)
	assert.Equal(t, 0.1, got.LiftAbs)
	assert.Nil(t, got.SE)
	assert.Nil(t, got.Z)
}

func TestTwoProportionZeroVariance(t *testing.T) {
	got := TwoProportionTest(40, 0, 60, 0)

	assert.Equal(t, 0.0, got.LiftAbs)
	require.NotNil(t, got.SE)
	assert.Equal(t, 0.0, *got.SE)
	assert.Nil(t, got.Z)

	all := TwoProportionTest(40, 40, 60, 60)
	assert.Nil(t, all.Z)
}

func ptr(v float64) *float64 { return &v }
