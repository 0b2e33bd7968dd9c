package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// Render modes.
const (
	ModeHeatmap = "heatmap"
	ModeGray    = "gray"
)

// Palettes for heatmap mode.
const (
	PaletteMoreland  = "moreland"
	PaletteKindlmann = "kindlmann"
	PaletteHeat      = "heat"
	PaletteRainbow   = "rainbow"
)

// Defaults for Options fields left zero.
const (
	DefaultMode    = ModeHeatmap
	DefaultPalette = PaletteMoreland
	DefaultSize    = 6.0 // inches
	paletteColors  = 256
)

// Formats lists the formats each mode supports.
var Formats = map[string][]string{
	ModeHeatmap: {FormatPNG, FormatSVG, FormatPDF},
	ModeGray:    {FormatPNG},
}

// Palettes lists the available heatmap palettes.
var Palettes = []string{PaletteMoreland, PaletteKindlmann, PaletteHeat, PaletteRainbow}

// Options controls rendering. Zero values select the defaults.
type Options struct {
	Mode    string
	Palette string
	Title   string

	// Width and Height are the heatmap page size in inches.
	Width  float64
	Height float64
}

// WithDefaults returns a copy of o with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if o.Width <= 0 {
		o.Width = DefaultSize
	}
	if o.Height <= 0 {
		o.Height = DefaultSize
	}
	return o
}

// Validate checks that format is supported by the mode and that the
// palette exists.
func (o Options) Validate(format string) error {
	o = o.WithDefaults()
	formats, ok := Formats[o.Mode]
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown render mode %q", o.Mode)
	}
	if !contains(formats, format) {
		return errors.New(errors.ErrCodeUnsupported, "mode %s cannot render %q", o.Mode, format)
	}
	if o.Mode == ModeHeatmap && !contains(Palettes, o.Palette) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown palette %q", o.Palette)
	}
	return nil
}

// Render draws g in the given format.
func Render(g *heightmap.Grid, format string, opts Options) ([]byte, error) {
	if err := opts.Validate(format); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	if opts.Mode == ModeGray {
		return Grayscale(g)
	}
	return Heatmap(g, format, opts)
}

// Heatmap renders g as a colored heat map with axes.
func Heatmap(g *heightmap.Grid, format string, opts Options) ([]byte, error) {
	opts = opts.WithDefaults()
	pal, err := newPalette(opts.Palette)
	if err != nil {
		return nil, err
	}

	hm := plotter.NewHeatMap(gridXYZ{g}, pal)
	hm.NaN = color.Transparent
	hm.Rasterized = true
	lo, hi, ok := finiteRange(g)
	switch {
	case !ok:
		hm.Min, hm.Max = 0, 1
	case lo == hi:
		hm.Min, hm.Max = lo, lo+1
	default:
		hm.Min, hm.Max = lo, hi
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	p.Add(hm)

	w, err := p.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "render %s", format)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func newPalette(name string) (palette.Palette, error) {
	switch name {
	case PaletteMoreland:
		return divergingPalette(moreland.SmoothBlueRed()), nil
	case PaletteKindlmann:
		return divergingPalette(moreland.Kindlmann()), nil
	case PaletteHeat:
		return palette.Heat(paletteColors, 1), nil
	case PaletteRainbow:
		return palette.Rainbow(paletteColors, palette.Blue, palette.Red, 1, 1, 1), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown palette %q", name)
}

func divergingPalette(cm palette.ColorMap) palette.Palette {
	cm.SetMax(1)
	cm.SetMin(0)
	return cm.Palette(paletteColors)
}

// gridXYZ adapts a grid to plotter.GridXYZ. Row 0 is drawn at the top.
type gridXYZ struct{ g *heightmap.Grid }

func (x gridXYZ) Dims() (c, r int)   { return x.g.Width(), x.g.Height() }
func (x gridXYZ) X(c int) float64    { return float64(c) }
func (x gridXYZ) Y(r int) float64    { return float64(r) }
func (x gridXYZ) Z(c, r int) float64 { return finiteOrNaN(x.g.At(x.g.Height()-1-r, c)) }

func finiteOrNaN(v float32) float64 {
	f := float64(v)
	if math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// finiteRange returns the minimum and maximum finite cell values.
// ok is false when the grid has no finite cells.
func finiteRange(g *heightmap.Grid) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range g.Values() {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
		ok = true
	}
	return lo, hi, ok
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
