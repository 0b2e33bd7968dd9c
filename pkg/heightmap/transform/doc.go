// Package transform provides the deterministic heightmap transforms used as
// building blocks for procedural terrain.
//
// # Overview
//
// Every function in this package consumes one or two [heightmap.Grid] values
// and returns a freshly allocated grid of the same shape. Inputs are never
// modified, so any transform may run concurrently with any other, including
// against the same input grid.
//
// # Blending and Shaping
//
// [Merge] linearly interpolates two equally-shaped grids. [Map] rescales a
// grid's observed value range onto a target range. [Curve] raises every cell
// to a power, flattening lowlands (power > 1) or lifting them (power < 1).
//
// Merge and Map are the only transforms with preconditions. Violations are
// returned as *errors.Error values with code SHAPE_MISMATCH or OUT_OF_RANGE;
// nothing is clamped silently.
//
// # Ridges
//
// [Ridge] folds every value around the midpoint of the grid's range and
// inverts the result, so valleys become ridges:
//
//	center = (max + min) / 2
//	out    = (max - (|v - center| + center)) * 2
//
// # Falloff
//
// The falloff family attenuates a grid by distance from its center.
// [DistancePercentage] is the shared radial term: the Euclidean distance from
// the center cell divided by the center row index, scaled by a strength and
// clamped to at most 1.
//
//   - [CircularFalloffPercentile] scales and negates each value: out = -(v * pct)
//   - [CircularFalloffAbsolute] subtracts max * pct and floors the result at
//     the grid's original minimum
//   - [VerticalFalloffPercentile] ignores the input values and produces the
//     distance of each row from a horizontal band
//
// # Flat Grids
//
// Transforms that divide by the grid's value span define the flat case
// explicitly: Map sends every cell of a flat grid to the target minimum, and
// Ridge of a flat grid is all zeros. No transform produces NaN from a flat
// grid. Curve still follows IEEE power semantics, so a negative cell raised
// to a fractional power becomes NaN.
//
// # Nil Handling
//
// All transforms panic if given a nil grid.
package transform
