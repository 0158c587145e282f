package starbox

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultHistogramBins is the number of depth bins when none is requested.
const DefaultHistogramBins = 10

// Bin is one slice of the depth window.
type Bin struct {
	From  float64 `json:"from_pc"`
	To    float64 `json:"to_pc"`
	Count int     `json:"count"`
}

// Label renders the bin range for chart axes.
func (b Bin) Label() string {
	return fmt.Sprintf("%.0f-%.0f", b.From, b.To)
}

// DepthHistogram counts the box points in equal-width slices of the depth
// window. Points outside the window are ignored.
func DepthHistogram(box *Box, bins int) []Bin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	dividers := floats.Span(make([]float64, bins+1), box.Window.Start, box.Window.End)

	x := make([]float64, 0, len(box.Points))
	for _, d := range box.Distances() {
		if d >= box.Window.Start && d < box.Window.End {
			x = append(x, d)
		}
	}
	sort.Float64s(x)
	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{From: dividers[i], To: dividers[i+1], Count: int(counts[i])}
	}
	return out
}
