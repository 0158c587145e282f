// Package region selects the catalog objects that sit inside a line-of-sight
// distance window.
package region

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/starbox/internal/catalog"
	"github.com/banshee-data/starbox/internal/units"
)

// ErrInvalidWindow is returned by Window.Validate.
var ErrInvalidWindow = errors.New("invalid distance window")

// Window is an open distance interval in parsecs. Both ends are exclusive.
type Window struct {
	Start float64 `json:"start_pc"`
	End   float64 `json:"end_pc"`
}

// Contains reports whether Start < d < End.
func (w Window) Contains(d float64) bool {
	return w.Start < d && d < w.End
}

// Validate requires finite bounds with Start < End. Filter itself does not
// call it.
func (w Window) Validate() error {
	if math.IsNaN(w.Start) || math.IsNaN(w.End) || math.IsInf(w.Start, 0) || math.IsInf(w.End, 0) {
		return fmt.Errorf("%w: bounds must be finite, got (%v, %v)", ErrInvalidWindow, w.Start, w.End)
	}
	if w.Start >= w.End {
		return fmt.Errorf("%w: start %v must be below end %v", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("(%g, %g) pc", w.Start, w.End)
}

// Distance returns the object's distance in parsecs, or false when it has
// no parallax.
func Distance(o catalog.Object) (float64, bool) {
	if !o.HasParallax() {
		return 0, false
	}
	return units.ParallaxToParsecs(*o.Parallax), true
}

// Filter returns the objects whose parallax distance lies strictly inside w,
// in input order. Objects without a parallax are skipped.
func Filter(objects []catalog.Object, w Window) []catalog.Object {
	kept := make([]catalog.Object, 0, len(objects))
	for _, o := range objects {
		d, ok := Distance(o)
		if !ok {
			continue
		}
		if w.Contains(d) {
			kept = append(kept, o)
		}
	}
	return kept
}
