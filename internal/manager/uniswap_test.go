package manager

import (
	"math"
	"testing"
)

func TestSnapDownToSpacing(t *testing.T) {
	cases := []struct {
		tick    int32
		spacing int32
		want    int32
	}{
		{125, 60, 120},
		{120, 60, 120},
		{-125, 60, -180},
		{-120, 60, -120},
		{7, 10, 0},
		{-7, 10, -10},
		{0, 200, 0},
	}
	for _, tc := range cases {
		if got := snapDownToSpacing(tc.tick, tc.spacing); got != tc.want {
			t.Fatalf("snap(%d, %d) = %d, want %d", tc.tick, tc.spacing, got, tc.want)
		}
	}
}

func TestTickOffsetMatchesPriceFactor(t *testing.T) {
	down := tickOffset(rangeLowerFactor)
	up := tickOffset(rangeUpperFactor)

	if down >= 0 {
		t.Fatalf("lower offset = %d, want negative", down)
	}
	if up <= 0 {
		t.Fatalf("upper offset = %d, want positive", up)
	}

	// The snapped tick must stay on the cheap side of the target factor.
	if price := math.Pow(1.0001, float64(down)); price > rangeLowerFactor {
		t.Fatalf("1.0001^%d = %f, want <= %f", down, price, rangeLowerFactor)
	}
	if price := math.Pow(1.0001, float64(up)); price > rangeUpperFactor {
		t.Fatalf("1.0001^%d = %f, want <= %f", up, price, rangeUpperFactor)
	}
	if price := math.Pow(1.0001, float64(up+1)); price <= rangeUpperFactor {
		t.Fatalf("offset %d is not the largest tick below the factor", up)
	}
}
