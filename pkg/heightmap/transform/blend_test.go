package transform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
)

var approx = cmpopts.EquateApprox(0, 1e-3)

func grid(t *testing.T, rows ...[]float32) *heightmap.Grid {
	t.Helper()
	g, err := heightmap.New(rows)
	if err != nil {
		t.Fatalf("heightmap.New() error = %v", err)
	}
	return g
}

func randomGrid(t *testing.T, r *rand.Rand, height, width int) *heightmap.Grid {
	t.Helper()
	g, err := heightmap.Generate(height, width, func(int, int) float32 {
		return r.Float32()*200 - 100
	})
	if err != nil {
		t.Fatalf("heightmap.Generate() error = %v", err)
	}
	return g
}

func TestMerge_SameGridHalfWeight(t *testing.T) {
	ones, _ := heightmap.Filled(3, 3, 1)

	got, err := Merge(ones, ones, 0.5)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !got.Equal(ones) {
		t.Errorf("Merge() = %v, want all ones", got.Rows())
	}
}

func TestMerge_WeightEndpoints(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		h, w := 1+r.Intn(8), 1+r.Intn(8)
		a := randomGrid(t, r, h, w)
		b := randomGrid(t, r, h, w)

		full, err := Merge(a, b, 1)
		if err != nil {
			t.Fatalf("Merge(1) error = %v", err)
		}
		if !full.Equal(a) {
			t.Fatalf("Merge(a, b, 1) should equal a")
		}

		none, err := Merge(a, b, 0)
		if err != nil {
			t.Fatalf("Merge(0) error = %v", err)
		}
		if !none.Equal(b) {
			t.Fatalf("Merge(a, b, 0) should equal b")
		}

		mid, _ := Merge(a, b, r.Float32())
		if !mid.SameShape(a) {
			t.Fatalf("Merge() shape = %dx%d, want %dx%d", mid.Height(), mid.Width(), h, w)
		}
	}
}

func TestMerge_Interpolates(t *testing.T) {
	a := grid(t, []float32{0, 10}, []float32{20, 30})
	b := grid(t, []float32{10, 10}, []float32{0, 0})

	got, err := Merge(a, b, 0.25)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	want := [][]float32{{7.5, 10}, {5, 7.5}}
	if diff := cmp.Diff(want, got.Rows(), approx); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_ShapeMismatch(t *testing.T) {
	base, _ := heightmap.Filled(3, 3, 1)
	taller, _ := heightmap.Filled(4, 3, 1)
	wider, _ := heightmap.Filled(3, 4, 1)

	for _, other := range []*heightmap.Grid{taller, wider} {
		for _, weight := range []float32{0, 0.5, 1, -1, 2} {
			_, err := Merge(base, other, weight)
			if !errors.Is(err, errors.ErrCodeShapeMismatch) {
				t.Errorf("Merge(3x3, %dx%d, %v) error = %v, want SHAPE_MISMATCH",
					other.Height(), other.Width(), weight, err)
			}
		}
	}
}

func TestMerge_WeightOutOfRange(t *testing.T) {
	a, _ := heightmap.Filled(2, 2, 1)

	for _, weight := range []float32{-0.001, 1.001, -5, float32(math.NaN())} {
		_, err := Merge(a, a, weight)
		if !errors.Is(err, errors.ErrCodeOutOfRange) {
			t.Errorf("Merge(weight=%v) error = %v, want OUT_OF_RANGE", weight, err)
		}
	}
}

func TestMap_Scenario(t *testing.T) {
	g := grid(t, []float32{0, 1}, []float32{2, 3})

	got, err := Map(g, 0, 10)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	want := [][]float32{{0, 3.333}, {6.667, 10}}
	if diff := cmp.Diff(want, got.Rows(), approx); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_RangeProperty(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 25; i++ {
		g := randomGrid(t, r, 1+r.Intn(10), 2+r.Intn(10))
		lo := r.Float32()*20 - 10
		hi := lo + 0.5 + r.Float32()*20

		got, err := Map(g, lo, hi)
		if err != nil {
			t.Fatalf("Map() error = %v", err)
		}

		const eps = 1e-3
		for _, v := range got.Values() {
			if v < lo-eps || v > hi+eps {
				t.Fatalf("Map(%v, %v) produced %v outside the target range", lo, hi, v)
			}
		}
		if d := math.Abs(float64(got.MinValue() - lo)); d > eps {
			t.Errorf("MinValue() = %v, want %v", got.MinValue(), lo)
		}
		if d := math.Abs(float64(got.MaxValue() - hi)); d > eps {
			t.Errorf("MaxValue() = %v, want %v", got.MaxValue(), hi)
		}
	}
}

func TestMap_FlatGrid(t *testing.T) {
	flat, _ := heightmap.Filled(3, 4, 42)

	got, err := Map(flat, -1, 1)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	for _, v := range got.Values() {
		if v != -1 {
			t.Fatalf("Map() of flat grid cell = %v, want -1", v)
		}
	}
}

func TestMap_InvalidRange(t *testing.T) {
	g := grid(t, []float32{0, 1})

	tests := []struct {
		name     string
		min, max float32
	}{
		{"equal", 1, 1},
		{"inverted", 10, 0},
		{"NaN", float32(math.NaN()), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Map(g, tt.min, tt.max)
			if !errors.Is(err, errors.ErrCodeOutOfRange) {
				t.Errorf("Map(%v, %v) error = %v, want OUT_OF_RANGE", tt.min, tt.max, err)
			}
		})
	}
}

func TestCurve_Identity(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	g := randomGrid(t, r, 6, 7)

	if got := Curve(g, 1); !got.Equal(g) {
		t.Error("Curve(g, 1) should equal g")
	}
}

func TestCurve_Powers(t *testing.T) {
	g := grid(t, []float32{0, 0.5, 2, 3})

	want := [][]float32{{0, 0.25, 4, 9}}
	if diff := cmp.Diff(want, Curve(g, 2).Rows(), approx); diff != "" {
		t.Errorf("Curve(2) mismatch (-want +got):\n%s", diff)
	}

	want = [][]float32{{0, 0.7071, 1.4142, 1.7321}}
	if diff := cmp.Diff(want, Curve(g, 0.5).Rows(), approx); diff != "" {
		t.Errorf("Curve(0.5) mismatch (-want +got):\n%s", diff)
	}
}

func TestCurve_NegativeBaseFractionalPower(t *testing.T) {
	g := grid(t, []float32{-4, 4})

	got := Curve(g, 0.5)
	if v := got.At(0, 0); !math.IsNaN(float64(v)) {
		t.Errorf("Curve(-4, 0.5) = %v, want NaN", v)
	}
	if v := got.At(0, 1); v != 2 {
		t.Errorf("Curve(4, 0.5) = %v, want 2", v)
	}

	// Integral powers of negative bases stay real.
	if v := Curve(g, 3).At(0, 0); v != -64 {
		t.Errorf("Curve(-4, 3) = %v, want -64", v)
	}
}

func TestRidge_Scenario(t *testing.T) {
	g := grid(t, []float32{0, 1}, []float32{2, 3})

	// min=0, max=3, center=1.5: (3 - (|v-1.5| + 1.5)) * 2
	want := [][]float32{{0, 2}, {2, 0}}
	if diff := cmp.Diff(want, Ridge(g).Rows(), approx); diff != "" {
		t.Errorf("Ridge() mismatch (-want +got):\n%s", diff)
	}
}

func TestRidge_MidpointBecomesPeak(t *testing.T) {
	g := grid(t, []float32{0, 2, 4})

	want := [][]float32{{0, 4, 0}}
	if diff := cmp.Diff(want, Ridge(g).Rows(), approx); diff != "" {
		t.Errorf("Ridge() mismatch (-want +got):\n%s", diff)
	}
}

func TestRidge_FlatGrid(t *testing.T) {
	flat, _ := heightmap.Filled(3, 3, 5)

	got := Ridge(flat)
	for _, v := range got.Values() {
		if v != 0 {
			t.Fatalf("Ridge() of flat grid cell = %v, want 0", v)
		}
	}
}

func TestTransforms_DoNotMutateInputs(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	a := randomGrid(t, r, 5, 5)
	b := randomGrid(t, r, 5, 5)
	aRows, bRows := a.Rows(), b.Rows()

	_, _ = Merge(a, b, 0.3)
	_, _ = Map(a, 0, 1)
	_ = Curve(a, 2)
	_ = Ridge(a)
	_ = CircularFalloffPercentile(a, 1)
	_ = CircularFalloffAbsolute(a, 1)
	_ = VerticalFalloffPercentile(a, 1)

	if diff := cmp.Diff(aRows, a.Rows()); diff != "" {
		t.Errorf("input a mutated (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(bRows, b.Rows()); diff != "" {
		t.Errorf("input b mutated (-before +after):\n%s", diff)
	}
}
