// Package heightmap provides the immutable elevation grid that every relief
// transform consumes and produces.
//
// # Overview
//
// A [Grid] is a dense, rectangular 2D container of float32 elevation values.
// Rows are indexed by h (0 = top) and columns by w (0 = left). Every row has
// the same length; jagged input is rejected at construction time, so code that
// holds a *Grid never needs to re-check its shape.
//
// # Construction
//
// Build grids from nested slices with [New], from a constant with [Filled],
// or cell by cell with [Generate]:
//
//	g, err := heightmap.New([][]float32{
//	    {0, 1},
//	    {2, 3},
//	})
//
// [New] copies its input, so later changes to the caller's slices never leak
// into the grid. Use [Validate] to check untrusted nested slices without
// building a grid.
//
// # Reductions
//
// [Grid.Height], [Grid.Width], [Grid.MinValue] and [Grid.MaxValue] are the
// whole-grid reductions the transforms depend on. MinValue starts from +Inf
// and MaxValue from -Inf, so NaN cells never win a comparison.
//
// # Immutability
//
// Grids are never modified after construction. [Grid.Apply] is the single
// primitive for deriving a new grid: it allocates a fresh grid of the same
// shape and fills it from a per-cell function. Because nothing mutates a grid,
// all methods are safe for concurrent use, including concurrent transforms
// reading the same input.
//
// # Related Packages
//
// The [transform] subpackage provides the heightmap transforms: merge, range
// remap, power curve, ridge, and the falloff family.
//
// [transform]: github.com/matzehuels/relief/pkg/heightmap/transform
package heightmap
