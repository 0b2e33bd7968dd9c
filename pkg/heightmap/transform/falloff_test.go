package transform

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/relief/pkg/heightmap"
)

func TestDistancePercentage_CenterIsZero(t *testing.T) {
	inf := float32(math.Inf(1))
	for _, strength := range []float32{0.5, 1, 7, 1000, -3, inf, -inf} {
		if got := DistancePercentage(2, 3, 2, 3, strength); got != 0 {
			t.Errorf("DistancePercentage(center, strength=%v) = %v, want 0", strength, got)
		}
	}
}

func TestDistancePercentage_Values(t *testing.T) {
	tests := []struct {
		name             string
		h, w             int
		centerH, centerW int
		strength         float32
		want             float64
	}{
		{"one row up", 1, 2, 2, 2, 1, 0.5},
		{"one column over", 2, 3, 2, 2, 1, 0.5},
		{"diagonal", 1, 1, 2, 2, 1, math.Sqrt2 / 2},
		{"scaled by strength", 1, 2, 2, 2, 1.5, 0.75},
		{"clamped corner", 0, 0, 2, 2, 1, 1},
		{"divides by center row only", 2, 0, 2, 4, 1, 1},
		{"negative strength unclamped", 0, 2, 2, 2, -3, -3},
		{"single row grid clamps", 0, 1, 0, 2, 0.25, 1},
		{"single row grid far cell", 0, 4, 0, 2, 0.001, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistancePercentage(tt.h, tt.w, tt.centerH, tt.centerW, tt.strength)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("DistancePercentage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistancePercentage_NeverAboveOne(t *testing.T) {
	for _, strength := range []float32{0.1, 1, 10, 1e6, float32(math.Inf(1))} {
		for h := 0; h < 9; h++ {
			for w := 0; w < 13; w++ {
				got := DistancePercentage(h, w, 4, 6, strength)
				if math.IsNaN(got) || got > 1 {
					t.Fatalf("DistancePercentage(%d, %d, strength=%v) = %v > 1", h, w, strength, got)
				}
			}
		}
	}

}

func TestDistancePercentage_SingleRow(t *testing.T) {
	for w := 0; w < 5; w++ {
		want := 1.0
		if w == 2 {
			want = 0
		}
		if got := DistancePercentage(0, w, 0, 2, 0.25); got != want {
			t.Errorf("DistancePercentage(0, %d, strength=0.25) = %v, want %v", w, got, want)
		}
	}

	if got := DistancePercentage(0, 0, 0, 2, -0.5); !math.IsInf(got, -1) {
		t.Errorf("negative strength = %v, want -Inf", got)
	}
	if got := DistancePercentage(0, 0, 0, 2, 0); !math.IsNaN(got) {
		t.Errorf("zero strength = %v, want NaN", got)
	}

	g, _ := heightmap.New([][]float32{{10, 10, 10, 10, 10}})
	want := [][]float32{{-10, -10, 0, -10, -10}}
	if diff := cmp.Diff(want, CircularFalloffPercentile(g, 0.25).Rows()); diff != "" {
		t.Errorf("CircularFalloffPercentile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCircularFalloffPercentile(t *testing.T) {
	ones, _ := heightmap.Filled(5, 5, 1)

	got := CircularFalloffPercentile(ones, 1)

	if v := got.At(2, 2); v != 0 {
		t.Errorf("center = %v, want 0", v)
	}
	if v := got.At(2, 3); v != -0.5 {
		t.Errorf("(2, 3) = %v, want -0.5", v)
	}
	if v := got.At(0, 0); v != -1 {
		t.Errorf("corner = %v, want -1", v)
	}
	if v := got.At(1, 1); math.Abs(float64(v)+math.Sqrt2/2) > 1e-6 {
		t.Errorf("(1, 1) = %v, want %v", v, -math.Sqrt2/2)
	}
}

func TestCircularFalloffPercentile_ScalesValue(t *testing.T) {
	g, _ := heightmap.Generate(5, 5, func(h, w int) float32 { return float32(h + w) })

	got := CircularFalloffPercentile(g, 1)

	// (2, 4): v=6, pct=1 -> -6; (3, 2): v=5, pct=0.5 -> -2.5
	if v := got.At(2, 4); v != -6 {
		t.Errorf("(2, 4) = %v, want -6", v)
	}
	if v := got.At(3, 2); v != -2.5 {
		t.Errorf("(3, 2) = %v, want -2.5", v)
	}
}

func TestCircularFalloffAbsolute(t *testing.T) {
	g, _ := heightmap.Generate(5, 5, func(h, w int) float32 {
		if h == 0 && w == 0 {
			return 0
		}
		return 10
	})

	got := CircularFalloffAbsolute(g, 1)

	want := [][]float32{
		{0, 0, 0, 0, 0},
		{0, 2.9289, 5, 2.9289, 0},
		{0, 5, 10, 5, 0},
		{0, 2.9289, 5, 2.9289, 0},
		{0, 0, 0, 0, 0},
	}
	if diff := cmp.Diff(want, got.Rows(), approx); diff != "" {
		t.Errorf("CircularFalloffAbsolute() mismatch (-want +got):\n%s", diff)
	}
}

func TestCircularFalloffAbsolute_FloorsAtOriginalMin(t *testing.T) {
	g, _ := heightmap.Generate(7, 7, func(h, w int) float32 { return float32(3 + h) })
	floor := g.MinValue()

	got := CircularFalloffAbsolute(g, 5)
	for _, v := range got.Values() {
		if v < floor {
			t.Fatalf("cell %v below original min %v", v, floor)
		}
	}
	if v := got.At(3, 3); v != g.At(3, 3) {
		t.Errorf("center = %v, want unchanged %v", v, g.At(3, 3))
	}
}

func TestVerticalFalloffPercentile(t *testing.T) {
	g, _ := heightmap.Generate(4, 3, func(h, w int) float32 { return float32(h*w) - 7 })

	tests := []struct {
		offset int
		want   []float32
	}{
		{0, []float32{2, 1, 0, 1}},
		{1, []float32{1, 0, 1, 2}},
		{-2, []float32{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		got := VerticalFalloffPercentile(g, tt.offset)
		for h, want := range tt.want {
			for w := 0; w < 3; w++ {
				if v := got.At(h, w); v != want {
					t.Errorf("offset %d: (%d, %d) = %v, want %v", tt.offset, h, w, v, want)
				}
			}
		}
	}
}

func TestVerticalFalloffPercentile_IgnoresValues(t *testing.T) {
	a, _ := heightmap.Filled(5, 2, 100)
	b, _ := heightmap.Filled(5, 2, float32(math.NaN()))

	if !VerticalFalloffPercentile(a, 0).Equal(VerticalFalloffPercentile(b, 0)) {
		t.Error("output should depend only on shape and offset")
	}
}
