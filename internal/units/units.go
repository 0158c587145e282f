// Package units provides shared constants, validation and conversions for
// angular and distance units.
package units

import (
	"errors"
	"fmt"
	"math"
)

// Angle unit constants
const (
	Degrees    = "deg"
	Arcminutes = "arcmin"
	Arcseconds = "arcsec"
)

// ValidUnits contains all valid angle unit values
var ValidUnits = []string{Degrees, Arcminutes, Arcseconds}

// ErrInvalidAngle is returned by Angle.Validate.
var ErrInvalidAngle = errors.New("invalid angle")

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "deg, arcmin, arcsec"
}

// ToDegrees converts an angle in the given unit to decimal degrees.
// Unknown units are treated as degrees.
func ToDegrees(value float64, unit string) float64 {
	switch unit {
	case Arcminutes:
		return value / 60.0
	case Arcseconds:
		return value / 3600.0
	default:
		return value
	}
}

// Angle is an angular size tagged with its unit.
type Angle struct {
	Value float64
	Unit  string
}

// Deg returns an Angle measured in degrees.
func Deg(v float64) Angle { return Angle{Value: v, Unit: Degrees} }

// Degrees returns the angle in decimal degrees.
func (a Angle) Degrees() float64 {
	return ToDegrees(a.Value, a.Unit)
}

// Validate requires a known unit and a positive, finite value.
func (a Angle) Validate() error {
	if !IsValid(a.Unit) {
		return fmt.Errorf("%w: unit %q must be one of: %s", ErrInvalidAngle, a.Unit, GetValidUnitsString())
	}
	if math.IsNaN(a.Value) || math.IsInf(a.Value, 0) || a.Value <= 0 {
		return fmt.Errorf("%w: value must be positive and finite, got %v", ErrInvalidAngle, a.Value)
	}
	return nil
}

func (a Angle) String() string {
	return fmt.Sprintf("%g%s", a.Value, a.Unit)
}
