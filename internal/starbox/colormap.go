package starbox

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Gold marks the target star in every rendering.
var Gold = color.NRGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}

// distanceColors maps distances onto a reversed black-body ramp: near
// objects are bright, far ones dark.
type distanceColors struct {
	cm palette.ColorMap
}

// newDistanceColors scales the colormap to the span of distances. An empty
// or single-valued span is widened so lookups never fail.
func newDistanceColors(distances []float64) *distanceColors {
	lo, hi := 0.0, 1.0
	if len(distances) > 0 {
		lo, hi = floats.Min(distances), floats.Max(distances)
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-0.5, hi+0.5
	}

	cm := moreland.BlackBody()
	cm.SetMax(hi)
	cm.SetMin(lo)
	return &distanceColors{cm: palette.Reverse(cm)}
}

// At returns the colour for a distance, clamped to the scaled range.
func (d *distanceColors) At(distance float64) color.Color {
	v := math.Max(d.cm.Min(), math.Min(d.cm.Max(), distance))
	c, err := d.cm.At(v)
	if err != nil {
		return color.Gray{Y: 0x80}
	}
	return c
}

// Hex renders the colour for a distance as "#rrggbb".
func (d *distanceColors) Hex(distance float64) string {
	return hexColor(d.At(distance))
}

func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// Min is the nearest distance of the scaled range.
func (d *distanceColors) Min() float64 { return d.cm.Min() }

// Max is the farthest distance of the scaled range.
func (d *distanceColors) Max() float64 { return d.cm.Max() }

// Stops samples n evenly spaced colours from Min to Max as "#rrggbb".
func (d *distanceColors) Stops(n int) []string {
	if n < 2 {
		n = 2
	}
	out := make([]string, n)
	step := (d.Max() - d.Min()) / float64(n-1)
	for i := range out {
		out[i] = d.Hex(d.Min() + step*float64(i))
	}
	return out
}
