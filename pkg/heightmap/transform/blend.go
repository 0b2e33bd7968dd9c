package transform

import (
	"math"

	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
)

// Merge linearly interpolates two grids of the same shape:
//
//	out[h][w] = a[h][w]*weight + b[h][w]*(1-weight)
//
// A weight of 1 returns a copy of a and a weight of 0 a copy of b.
//
// Merge returns an error with code SHAPE_MISMATCH if the grids differ in
// height or width, and OUT_OF_RANGE if weight is outside [0, 1]. The shape is
// checked first.
func Merge(a, b *heightmap.Grid, weight float32) (*heightmap.Grid, error) {
	if err := errors.ValidateSameShape(a.Height(), a.Width(), b.Height(), b.Width()); err != nil {
		return nil, err
	}
	if err := errors.ValidateWeight(weight); err != nil {
		return nil, err
	}

	inverse := 1 - weight
	return a.Apply(func(h, w int, v float32) float32 {
		return v*weight + b.At(h, w)*inverse
	}), nil
}

// Map re-maps every cell from the grid's observed range [MinValue, MaxValue]
// onto [min, max]:
//
//	out = (v - initialMin) * (max - min) / (initialMax - initialMin) + min
//
// A flat grid (MinValue == MaxValue) has no range to stretch; every cell maps
// to min.
//
// Map returns an error with code OUT_OF_RANGE unless min < max.
func Map(g *heightmap.Grid, min, max float32) (*heightmap.Grid, error) {
	if err := errors.ValidateTargetRange(min, max); err != nil {
		return nil, err
	}

	initialMin := g.MinValue()
	initialMax := g.MaxValue()
	if initialMax == initialMin {
		return g.Apply(func(int, int, float32) float32 { return min }), nil
	}

	span := max - min
	initialSpan := initialMax - initialMin
	return g.Apply(func(_, _ int, v float32) float32 {
		return (v-initialMin)*span/initialSpan + min
	}), nil
}

// Curve raises every cell to power. A power of 1 is the identity.
//
// Curve follows IEEE semantics for math.Pow: a negative cell raised to a
// non-integral power yields NaN, which is passed through unchanged.
func Curve(g *heightmap.Grid, power float32) *heightmap.Grid {
	p := float64(power)
	return g.Apply(func(_, _ int, v float32) float32 {
		return float32(math.Pow(float64(v), p))
	})
}

// Ridge folds each value around the midpoint of the grid's range and flips
// it so that valleys become ridges:
//
//	center = (max + min) / 2
//	out    = (max - (|v - center| + center)) * 2
//
// Cells at the midpoint map to max - min; cells at either extreme map to 0.
// A flat grid maps to all zeros.
func Ridge(g *heightmap.Grid) *heightmap.Grid {
	lowest := g.MinValue()
	highest := g.MaxValue()
	center := (highest + lowest) / 2

	return g.Apply(func(_, _ int, v float32) float32 {
		return (highest - (abs32(v-center) + center)) * 2
	})
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
