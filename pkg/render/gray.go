package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/matzehuels/relief/pkg/heightmap"
)

// Grayscale encodes g as a 16-bit grayscale PNG with one pixel per cell.
// The finite minimum maps to black and the finite maximum to white; a flat
// grid and non-finite cells are black.
func Grayscale(g *heightmap.Grid) ([]byte, error) {
	img := image.NewGray16(image.Rect(0, 0, g.Width(), g.Height()))
	lo, hi, ok := finiteRange(g)
	span := hi - lo

	for h := 0; h < g.Height(); h++ {
		for w := 0; w < g.Width(); w++ {
			var level uint16
			v := float64(g.At(h, w))
			if ok && span > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
				level = uint16(math.Round((v - lo) / span * math.MaxUint16))
			}
			img.SetGray16(w, h, color.Gray16{Y: level})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
