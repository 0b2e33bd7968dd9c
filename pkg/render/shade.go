package render

import (
	"math"
	"strings"

	"github.com/matzehuels/relief/pkg/heightmap"
)

// Ramp is the character ramp used by Shade, from lowest to highest.
const Ramp = " .:-=+*#%@"

// Shade downsamples g to at most rows lines of cols characters, averaging
// the finite cells under each character. Blocks with no finite cell are
// drawn as '?'.
func Shade(g *heightmap.Grid, cols, rows int) []string {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	cols = min(cols, g.Width())
	rows = min(rows, g.Height())
	lo, hi, _ := finiteRange(g)
	span := hi - lo

	lines := make([]string, rows)
	var b strings.Builder
	for r := 0; r < rows; r++ {
		h0, h1 := r*g.Height()/rows, (r+1)*g.Height()/rows
		b.Reset()
		for c := 0; c < cols; c++ {
			w0, w1 := c*g.Width()/cols, (c+1)*g.Width()/cols
			mean, ok := blockMean(g, h0, h1, w0, w1)
			switch {
			case !ok:
				b.WriteByte('?')
			case span <= 0:
				b.WriteByte(Ramp[0])
			default:
				i := int((mean - lo) / span * float64(len(Ramp)-1))
				b.WriteByte(Ramp[max(0, min(i, len(Ramp)-1))])
			}
		}
		lines[r] = b.String()
	}
	return lines
}

func blockMean(g *heightmap.Grid, h0, h1, w0, w1 int) (float64, bool) {
	var sum float64
	var n int
	for h := h0; h < h1; h++ {
		for w := w0; w < w1; w++ {
			v := float64(g.At(h, w))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
