// Package catalog queries the SIMBAD astronomical database for single
// objects and for the objects around a sky position.
package catalog

import (
	"context"

	"github.com/banshee-data/starbox/internal/skycoord"
	"github.com/banshee-data/starbox/internal/units"
)

// Object is one catalog row. RA and Dec are kept exactly as the catalog
// printed them (sexagesimal hours and degrees).
type Object struct {
	ID  string `json:"id"`
	RA  string `json:"ra"`
	Dec string `json:"dec"`
	// Parallax in milliarcseconds; nil when the catalog has no measurement.
	Parallax     *float64 `json:"parallax_mas,omitempty"`
	ObjectType   string   `json:"object_type,omitempty"`
	SpectralType string   `json:"spectral_type,omitempty"`
}

// HasParallax reports whether a parallax measurement is present.
func (o Object) HasParallax() bool {
	return o.Parallax != nil
}

// Coord parses the object's sexagesimal position.
func (o Object) Coord() (skycoord.Coord, error) {
	return skycoord.Parse(o.RA, o.Dec)
}

// Catalog is the query surface the star box builder depends on.
type Catalog interface {
	// ResolveObject looks up a single object by any identifier the catalog knows.
	ResolveObject(ctx context.Context, name string, cfg QueryConfig) (Object, error)
	// QueryRegion returns every object within radius of center.
	QueryRegion(ctx context.Context, center skycoord.Coord, radius units.Angle, cfg QueryConfig) ([]Object, error)
}

// Float returns a pointer to v, for building Objects with a parallax.
func Float(v float64) *float64 { return &v }
