package transform

import (
	"math"

	"github.com/matzehuels/relief/pkg/heightmap"
)

// DistancePercentage returns how far (h, w) lies from the center cell,
// expressed as a fraction of the center row index and scaled by strength:
//
//	pct = sqrt((centerH-h)^2 + (centerW-w)^2) / centerH * strength
//
// The result is clamped to at most 1. There is no lower clamp, so a negative
// strength yields negative percentages. The center cell is always 0.
//
// The divisor is always the center row, never a combined radius, so wide
// grids reach the clamp before their left and right edges. For single-row
// grids (centerH == 0) every off-center distance divides to +Inf: the result
// is 1 for a positive strength, -Inf for a negative one and NaN for zero.
func DistancePercentage(h, w, centerH, centerW int, strength float32) float64 {
	dh := float64(centerH - h)
	dw := float64(centerW - w)
	if dh == 0 && dw == 0 {
		return 0
	}

	pct := math.Sqrt(dh*dh+dw*dw) / float64(centerH) * float64(strength)
	if pct > 1 {
		pct = 1
	}
	return pct
}

// center returns the center cell of g using integer division.
func center(g *heightmap.Grid) (int, int) {
	return g.Height() / 2, g.Width() / 2
}

// CircularFalloffPercentile scales each value by its radial distance
// percentage and negates it:
//
//	out[h][w] = -(v * DistancePercentage(h, w, ...))
//
// The result does not depend on the grid's value range. The center cell
// always maps to zero.
func CircularFalloffPercentile(g *heightmap.Grid, strength float32) *heightmap.Grid {
	centerH, centerW := center(g)
	return g.Apply(func(h, w int, v float32) float32 {
		pct := DistancePercentage(h, w, centerH, centerW, strength)
		return float32(0 - float64(v)*pct)
	})
}

// CircularFalloffAbsolute lowers each value by the grid's maximum scaled by
// the radial distance percentage, never going below the grid's minimum:
//
//	out[h][w] = max(v - gridMax*pct, gridMin)
//
// gridMin and gridMax are computed once over the input before any cell is
// transformed.
func CircularFalloffAbsolute(g *heightmap.Grid, strength float32) *heightmap.Grid {
	centerH, centerW := center(g)
	highest := float64(g.MaxValue())
	lowest := g.MinValue()

	return g.Apply(func(h, w int, v float32) float32 {
		pct := DistancePercentage(h, w, centerH, centerW, strength)
		out := float32(float64(v) - highest*pct)
		if out < lowest {
			out = lowest
		}
		return out
	})
}

// VerticalFalloffPercentile returns a grid of the same shape whose cells hold
// the distance of their row from a horizontal band:
//
//	out[h][w] = |h - height/2 + offset|
//
// The input values are ignored; only the grid's shape and offset matter. The
// band sits at row height/2 - offset and the output grows by one per row away
// from it.
func VerticalFalloffPercentile(g *heightmap.Grid, offset int) *heightmap.Grid {
	half := g.Height() / 2
	return g.Apply(func(h, _ int, _ float32) float32 {
		d := h - half + offset
		if d < 0 {
			d = -d
		}
		return float32(d)
	})
}
