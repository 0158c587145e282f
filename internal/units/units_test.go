package units

import (
	"errors"
	"math"
	"testing"
)

func TestToDegrees(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		unit     string
		expected float64
	}{
		{"1 deg", 1.0, Degrees, 1.0},
		{"30 arcmin", 30.0, Arcminutes, 0.5},
		{"3600 arcsec", 3600.0, Arcseconds, 1.0},
		{"1 arcsec", 1.0, Arcseconds, 1.0 / 3600.0},
		{"unknown units default to deg", 2.5, "furlong", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToDegrees(tt.value, tt.unit)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("ToDegrees(%f, %s) = %f, want %f", tt.value, tt.unit, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"deg", Degrees, true},
		{"arcmin", Arcminutes, true},
		{"arcsec", Arcseconds, true},
		{"empty", "", false},
		{"radians", "rad", false},
		{"case sensitive", "DEG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestAngle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		angle   Angle
		wantErr bool
	}{
		{"one degree", Deg(1), false},
		{"arcsec", Angle{Value: 30, Unit: Arcseconds}, false},
		{"zero", Deg(0), true},
		{"negative", Deg(-1), true},
		{"nan", Deg(math.NaN()), true},
		{"inf", Deg(math.Inf(1)), true},
		{"bad unit", Angle{Value: 1, Unit: "rad"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.angle.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAngle) {
				t.Errorf("expected ErrInvalidAngle, got %v", err)
			}
		})
	}
}

func TestAngle_Degrees(t *testing.T) {
	a := Angle{Value: 90, Unit: Arcminutes}
	if got := a.Degrees(); got != 1.5 {
		t.Errorf("Degrees() = %v, want 1.5", got)
	}
	if a.String() != "90arcmin" {
		t.Errorf("String() = %q", a.String())
	}
}

func TestParallaxToParsecs(t *testing.T) {
	tests := []struct {
		parallax float64
		expected float64
	}{
		{1000, 1},
		{500, 2},
		{10, 100},
		{21.8781, 45.7078},
	}
	for _, tt := range tests {
		got := ParallaxToParsecs(tt.parallax)
		if math.Abs(got-tt.expected) > 1e-3 {
			t.Errorf("ParallaxToParsecs(%v) = %v, want %v", tt.parallax, got, tt.expected)
		}
	}

	if !math.IsInf(ParallaxToParsecs(0), 1) {
		t.Error("zero parallax should give +Inf")
	}
}
