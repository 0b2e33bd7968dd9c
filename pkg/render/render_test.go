package render

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
)

func mustGrid(t *testing.T, rows [][]float32) *heightmap.Grid {
	t.Helper()
	g, err := heightmap.New(rows)
	if err != nil {
		t.Fatalf("heightmap.New: %v", err)
	}
	return g
}

func TestHeatmapFormats(t *testing.T) {
	g, _ := heightmap.Generate(8, 12, func(h, w int) float32 { return float32(h*w) / 10 })

	magic := map[string]string{
		FormatPNG: "\x89PNG",
		FormatSVG: "<?xml",
		FormatPDF: "%PDF",
	}
	for format, prefix := range magic {
		t.Run(format, func(t *testing.T) {
			data, err := Render(g, format, Options{Title: "test"})
			if err != nil {
				t.Fatalf("Render(%s) error = %v", format, err)
			}
			if !bytes.HasPrefix(data, []byte(prefix)) {
				t.Errorf("Render(%s) output starts with %q, want %q", format, data[:min(len(data), 8)], prefix)
			}
		})
	}
}

func TestHeatmapDegenerateGrids(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	grids := map[string]*heightmap.Grid{
		"flat":       mustGrid(t, [][]float32{{2, 2}, {2, 2}}),
		"single":     mustGrid(t, [][]float32{{1}}),
		"all nan":    mustGrid(t, [][]float32{{nan, nan}}),
		"with inf":   mustGrid(t, [][]float32{{0, inf}, {1, 2}}),
		"single row": mustGrid(t, [][]float32{{0, 1, 2, 3}}),
	}
	for _, p := range Palettes {
		for name, g := range grids {
			if _, err := Heatmap(g, FormatPNG, Options{Palette: p}); err != nil {
				t.Errorf("Heatmap(%s, %s) error = %v", name, p, err)
			}
		}
	}
}

func TestGrayscale(t *testing.T) {
	g := mustGrid(t, [][]float32{{0, 1}, {2, 3}})
	data, err := Render(g, FormatPNG, Options{Mode: ModeGray})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	gray, ok := img.(*image.Gray16)
	if !ok {
		t.Fatalf("decoded %T, want *image.Gray16", img)
	}
	if b := gray.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 2x2", b)
	}

	want := map[image.Point]uint16{
		{0, 0}: 0,
		{1, 0}: 21845,
		{0, 1}: 43690,
		{1, 1}: 65535,
	}
	for p, y := range want {
		if got := gray.Gray16At(p.X, p.Y).Y; got != y {
			t.Errorf("pixel %v = %d, want %d", p, got, y)
		}
	}
}

func TestGrayscaleFlatAndNaN(t *testing.T) {
	for _, g := range []*heightmap.Grid{
		mustGrid(t, [][]float32{{5, 5}}),
		mustGrid(t, [][]float32{{float32(math.NaN()), 5}}),
	} {
		data, err := Grayscale(g)
		if err != nil {
			t.Fatalf("Grayscale() error = %v", err)
		}
		img, _ := png.Decode(bytes.NewReader(data))
		r, _, _, _ := img.At(0, 0).RGBA()
		if r != 0 {
			t.Errorf("pixel (0,0) = %d, want black", r)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		format string
		opts   Options
		code   errors.Code
	}{
		{"gray svg", FormatSVG, Options{Mode: ModeGray}, errors.ErrCodeUnsupported},
		{"unknown format", "bmp", Options{}, errors.ErrCodeUnsupported},
		{"unknown mode", FormatPNG, Options{Mode: "contour"}, errors.ErrCodeInvalidInput},
		{"unknown palette", FormatPNG, Options{Palette: "viridis"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(tt.format); !errors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %v", err, tt.code)
			}
		})
	}

	if err := (Options{}).Validate(FormatPDF); err != nil {
		t.Errorf("default options should accept pdf: %v", err)
	}
}

func TestShade(t *testing.T) {
	g := mustGrid(t, [][]float32{{0, 1}, {2, 3}})
	got := Shade(g, 2, 2)
	want := []string{" -", "*@"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Shade() = %q, want %q", got, want)
	}

	big, _ := heightmap.Generate(40, 80, func(h, w int) float32 { return float32(h) })
	lines := Shade(big, 20, 10)
	if len(lines) != 10 || len(lines[0]) != 20 {
		t.Fatalf("Shade() size = %dx%d, want 10x20", len(lines), len(lines[0]))
	}
	if lines[0][0] != ' ' || lines[9][0] != '@' && lines[9][0] != '%' {
		t.Errorf("Shade() should run low to high from top to bottom: %q ... %q", lines[0], lines[9])
	}

	flat, _ := heightmap.Filled(3, 3, 1)
	for _, line := range Shade(flat, 3, 3) {
		if strings.TrimSpace(line) != "" {
			t.Errorf("flat grid should shade blank, got %q", line)
		}
	}

	if Shade(g, 0, 5) != nil {
		t.Error("Shade with zero columns should return nil")
	}
	if got := Shade(g, 100, 100); len(got) != 2 || len(got[0]) != 2 {
		t.Errorf("Shade should not upsample: %q", got)
	}

	nan := mustGrid(t, [][]float32{{float32(math.NaN()), 1}})
	if got := Shade(nan, 2, 1); got[0][0] != '?' {
		t.Errorf("all-NaN block should be '?', got %q", got)
	}
}
