// Package skycoord converts between sexagesimal sky coordinates, as SIMBAD
// prints them, and decimal degrees.
package skycoord

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed coordinate")

// Coord is an ICRS position in decimal degrees.
type Coord struct {
	RA  float64 `json:"ra_deg"`
	Dec float64 `json:"dec_deg"`
}

// Parse builds a Coord from a sexagesimal RA (hours) and Dec (degrees).
func Parse(ra, dec string) (Coord, error) {
	raDeg, err := ParseRA(ra)
	if err != nil {
		return Coord{}, err
	}
	decDeg, err := ParseDec(dec)
	if err != nil {
		return Coord{}, err
	}
	return Coord{RA: raDeg, Dec: decDeg}, nil
}

// String renders the coordinate in decimal degrees, the form SIMBAD's
// "query coo" command accepts.
func (c Coord) String() string {
	return fmt.Sprintf("%.8f %+.8f", c.RA, c.Dec)
}

// ParseRA parses "hh mm ss.s" (or "hh:mm:ss.s", with minutes and seconds
// optional) and returns degrees in [0, 360).
func ParseRA(s string) (float64, error) {
	neg, parts, err := split(s)
	if err != nil {
		return 0, fmt.Errorf("right ascension %q: %w", s, err)
	}
	if neg {
		return 0, fmt.Errorf("right ascension %q: %w: negative hours", s, ErrMalformed)
	}
	if parts[0] >= 24 {
		return 0, fmt.Errorf("right ascension %q: %w: hours out of range", s, ErrMalformed)
	}
	return (parts[0] + parts[1]/60 + parts[2]/3600) * 15, nil
}

// ParseDec parses "+dd mm ss.s" and returns degrees in [-90, 90]. The sign
// applies to the whole value, so "-00 30 00" is -0.5.
func ParseDec(s string) (float64, error) {
	neg, parts, err := split(s)
	if err != nil {
		return 0, fmt.Errorf("declination %q: %w", s, err)
	}
	deg := parts[0] + parts[1]/60 + parts[2]/3600
	if deg > 90 {
		return 0, fmt.Errorf("declination %q: %w: beyond the pole", s, ErrMalformed)
	}
	if neg {
		deg = -deg
	}
	return deg, nil
}

// split pulls the sign off and returns up to three non-negative fields.
// Minutes and seconds must be below 60.
func split(s string) (bool, [3]float64, error) {
	var out [3]float64
	s = strings.TrimSpace(s)
	if s == "" {
		return false, out, fmt.Errorf("%w: empty", ErrMalformed)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ':' || r == '\t' })
	if len(fields) == 0 || len(fields) > 3 {
		return false, out, fmt.Errorf("%w: want 1 to 3 fields, got %d", ErrMalformed, len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false, out, fmt.Errorf("%w: bad field %q", ErrMalformed, f)
		}
		// only the last field may carry a fraction
		if i < len(fields)-1 && v != math.Trunc(v) {
			return false, out, fmt.Errorf("%w: fractional field %q before the last", ErrMalformed, f)
		}
		if i > 0 && v >= 60 {
			return false, out, fmt.Errorf("%w: field %q not below 60", ErrMalformed, f)
		}
		out[i] = v
	}
	return neg, out, nil
}

// FormatRA renders degrees as "hh mm ss.ssss".
func FormatRA(deg float64) string {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	h, m, s := sexagesimal(deg/15, 4)
	if h == 24 {
		h = 0
	}
	return fmt.Sprintf("%02d %02d %07.4f", h, m, s)
}

// FormatDec renders degrees as "+dd mm ss.sss".
func FormatDec(deg float64) string {
	sign := '+'
	if deg < 0 {
		sign = '-'
		deg = -deg
	}
	d, m, s := sexagesimal(deg, 3)
	return fmt.Sprintf("%c%02d %02d %06.3f", sign, d, m, s)
}

// sexagesimal splits v into whole units, minutes and seconds, rounding the
// seconds to prec digits and carrying so no field reads 60. The split is done
// on integer counts of the smallest printed unit so rounding cannot leave a
// remainder that formats as 60.
func sexagesimal(v float64, prec int) (int, int, float64) {
	scale := int64(math.Round(math.Pow(10, float64(prec))))
	ticks := int64(math.Round(v * 3600 * float64(scale)))
	if ticks < 0 {
		ticks = 0
	}
	perMinute := 60 * scale
	perUnit := 60 * perMinute
	whole := ticks / perUnit
	minutes := (ticks % perUnit) / perMinute
	seconds := float64(ticks%perMinute) / float64(scale)
	return int(whole), int(minutes), seconds
}
