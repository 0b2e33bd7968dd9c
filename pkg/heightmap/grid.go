package heightmap

import (
	"fmt"
	"math"

	"github.com/matzehuels/relief/pkg/errors"
)

// Grid is an immutable rectangular heightmap of float32 values.
//
// The zero value is not usable - use New, Filled or Generate. Height and
// Width of a nil *Grid report 0; every other method panics on a nil receiver.
type Grid struct {
	height int
	width  int
	values []float32 // row-major, len == height*width
}

// Validate reports whether rows describe a well-formed grid: at least one row,
// a non-empty first row, and every row the same length as the first.
// The returned error has code INVALID_GRID.
func Validate(rows [][]float32) error {
	if len(rows) == 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "grid has no rows")
	}
	width := len(rows[0])
	if width == 0 {
		return errors.New(errors.ErrCodeInvalidGrid, "grid has no columns")
	}
	for h, row := range rows {
		if len(row) != width {
			return errors.New(errors.ErrCodeInvalidGrid,
				"row %d has %d columns, want %d", h, len(row), width)
		}
	}
	return nil
}

// New builds a grid from nested rows after validating them.
// The rows are copied; the caller keeps ownership of its slices.
func New(rows [][]float32) (*Grid, error) {
	if err := Validate(rows); err != nil {
		return nil, err
	}
	g := alloc(len(rows), len(rows[0]))
	for h, row := range rows {
		copy(g.values[h*g.width:(h+1)*g.width], row)
	}
	return g, nil
}

// Filled builds a height x width grid with every cell set to v.
func Filled(height, width int, v float32) (*Grid, error) {
	return Generate(height, width, func(int, int) float32 { return v })
}

// Generate builds a height x width grid whose cell (h, w) is fn(h, w).
// Both dimensions must be at least 1.
func Generate(height, width int, fn func(h, w int) float32) (*Grid, error) {
	if height < 1 || width < 1 {
		return nil, errors.New(errors.ErrCodeInvalidGrid,
			"grid dimensions must be positive, got %dx%d", height, width)
	}
	g := alloc(height, width)
	for h := 0; h < height; h++ {
		for w := 0; w < width; w++ {
			g.values[h*width+w] = fn(h, w)
		}
	}
	return g, nil
}

func alloc(height, width int) *Grid {
	return &Grid{
		height: height,
		width:  width,
		values: make([]float32, height*width),
	}
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return g.height
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

// Cells returns Height() * Width().
func (g *Grid) Cells() int { return len(g.values) }

// At returns the value at row h, column w. It panics if either index is out
// of range.
func (g *Grid) At(h, w int) float32 {
	if h < 0 || h >= g.height || w < 0 || w >= g.width {
		panic(fmt.Sprintf("heightmap: index (%d, %d) out of range for %dx%d grid", h, w, g.height, g.width))
	}
	return g.values[h*g.width+w]
}

// Row returns a copy of row h.
func (g *Grid) Row(h int) []float32 {
	if h < 0 || h >= g.height {
		panic(fmt.Sprintf("heightmap: row %d out of range for %d rows", h, g.height))
	}
	out := make([]float32, g.width)
	copy(out, g.values[h*g.width:(h+1)*g.width])
	return out
}

// Rows returns a deep copy of the grid as nested rows.
func (g *Grid) Rows() [][]float32 {
	out := make([][]float32, g.height)
	for h := range out {
		out[h] = g.Row(h)
	}
	return out
}

// Values returns a copy of the cells in row-major order.
func (g *Grid) Values() []float32 {
	out := make([]float32, len(g.values))
	copy(out, g.values)
	return out
}

// MaxValue returns the largest cell value. The accumulator starts at -Inf and
// NaN cells are skipped by the comparison.
func (g *Grid) MaxValue() float32 {
	highest := float32(math.Inf(-1))
	for _, v := range g.values {
		if v >= highest {
			highest = v
		}
	}
	return highest
}

// MinValue returns the smallest cell value. The accumulator starts at +Inf and
// NaN cells are skipped by the comparison.
func (g *Grid) MinValue() float32 {
	lowest := float32(math.Inf(1))
	for _, v := range g.values {
		if v <= lowest {
			lowest = v
		}
	}
	return lowest
}

// SameShape reports whether o has the same height and width as g.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Height() == o.Height() && g.Width() == o.Width()
}

// Apply returns a new grid of the same shape with cell (h, w) set to
// fn(h, w, g.At(h, w)). The receiver is not modified.
func (g *Grid) Apply(fn func(h, w int, v float32) float32) *Grid {
	out := alloc(g.height, g.width)
	for h := 0; h < g.height; h++ {
		base := h * g.width
		for w := 0; w < g.width; w++ {
			out.values[base+w] = fn(h, w, g.values[base+w])
		}
	}
	return out
}

// Equal reports whether o has the same shape and identical cells. NaN cells
// are considered equal to each other.
func (g *Grid) Equal(o *Grid) bool {
	return g.ApproxEqual(o, 0)
}

// ApproxEqual reports whether o has the same shape and every cell differs
// from g's by at most tol. Matching infinities and NaN pairs compare equal.
func (g *Grid) ApproxEqual(o *Grid, tol float32) bool {
	if g == nil || o == nil {
		return g == o
	}
	if !g.SameShape(o) {
		return false
	}
	for i, a := range g.values {
		b := o.values[i]
		switch {
		case a == b:
		case isNaN(a) && isNaN(b):
		case float32(math.Abs(float64(a-b))) <= tol:
		default:
			return false
		}
	}
	return true
}

// String returns a short description like "heightmap 4x3".
func (g *Grid) String() string {
	return fmt.Sprintf("heightmap %dx%d", g.Height(), g.Width())
}

func isNaN(v float32) bool { return math.IsNaN(float64(v)) }
