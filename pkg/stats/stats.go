// Package stats summarizes the value distribution of a heightmap.
//
// Summaries back the inspect command and the preview stage browser: they
// show at a glance whether a transform left the grid in the expected range,
// and whether a power curve introduced NaN cells.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/relief/pkg/heightmap"
)

// DefaultBins is the histogram bin count used when Summarize gets bins <= 0.
const DefaultBins = 10

// Summary describes the finite cells of a grid.
//
// When the grid has no finite cells every statistic is zero and Histogram
// and Dividers are nil.
type Summary struct {
	Height    int `json:"height"`
	Width     int `json:"width"`
	Cells     int `json:"cells"`
	NonFinite int `json:"non_finite"`

	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`

	// Histogram[i] counts values in [Dividers[i], Dividers[i+1]).
	Histogram []int     `json:"histogram,omitempty"`
	Dividers  []float64 `json:"dividers,omitempty"`
}

// Finite returns the number of finite cells.
func (s Summary) Finite() int { return s.Cells - s.NonFinite }

// Summarize computes a Summary with the given number of histogram bins.
func Summarize(g *heightmap.Grid, bins int) Summary {
	if bins <= 0 {
		bins = DefaultBins
	}
	s := Summary{
		Height: g.Height(),
		Width:  g.Width(),
		Cells:  g.Cells(),
	}

	x := make([]float64, 0, g.Cells())
	for _, v := range g.Values() {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			s.NonFinite++
			continue
		}
		x = append(x, f)
	}
	if len(x) == 0 {
		return s
	}
	sort.Float64s(x)

	s.Min, s.Max = x[0], x[len(x)-1]
	s.Mean = stat.Mean(x, nil)
	if len(x) > 1 {
		s.StdDev = stat.PopStdDev(x, nil)
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, x, nil)
	s.P10 = stat.Quantile(0.1, stat.Empirical, x, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, x, nil)

	// The upper divider is nudged past Max so the maximum lands in the last
	// bin rather than outside the histogram. A flat grid gets a single bin.
	if s.Min == s.Max {
		bins = 1
	}
	s.Dividers = make([]float64, bins+1)
	floats.Span(s.Dividers, s.Min, math.Nextafter(s.Max, math.Inf(1)))
	counts := stat.Histogram(nil, s.Dividers, x, nil)
	s.Histogram = make([]int, len(counts))
	for i, c := range counts {
		s.Histogram[i] = int(c)
	}
	return s
}

// Range returns Max - Min.
func (s Summary) Range() float64 { return s.Max - s.Min }

// Normalized reports whether every finite value lies in [0, 1].
func (s Summary) Normalized() bool {
	return s.Finite() > 0 && s.Min >= 0 && s.Max <= 1
}
