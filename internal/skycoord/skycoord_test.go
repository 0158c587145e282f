package skycoord

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRA(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00 00 00", 0},
		{"01 00 00", 15},
		{"12 30", 187.5},
		{"06", 90},
		{"00 14 10.2521", 3.54271708},
		{"23:59:59.9", 359.99958333},
		{"  18 36 56.336 ", 279.23473333},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRA(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestParseDec(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"+00 00 00", 0},
		{"-07 11 56.841", -7.19912250},
		{"+38 47 01.28", 38.78368889},
		{"-00 30 00", -0.5},
		{"45", 45},
		{"-90", -90},
		{"12:30:00", 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDec(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	bad := []struct {
		name    string
		ra, dec string
	}{
		{"empty ra", "", "+10 00 00"},
		{"letters", "ab cd ef", "+10 00 00"},
		{"too many fields", "01 02 03 04", "+10 00 00"},
		{"minutes 60", "01 60 00", "+10 00 00"},
		{"hours 24", "24 00 00", "+10 00 00"},
		{"negative ra", "-01 00 00", "+10 00 00"},
		{"fraction before last", "01.5 00 00", "+10 00 00"},
		{"dec beyond pole", "01 00 00", "+91 00 00"},
		{"dec seconds 60", "01 00 00", "+10 00 60"},
		{"empty dec", "01 00 00", "  "},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.ra, tt.dec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "want ErrMalformed, got %v", err)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 3.54271708, 187.5, 279.23473333, 359.9999} {
		ra, err := ParseRA(FormatRA(deg))
		require.NoError(t, err)
		assert.InDelta(t, deg, ra, 1e-5, "ra %v", deg)
	}
	for _, deg := range []float64{-89.999, -7.1991225, -0.5, 0, 38.78368889, 90} {
		dec, err := ParseDec(FormatDec(deg))
		require.NoError(t, err)
		assert.InDelta(t, deg, dec, 1e-5, "dec %v", deg)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12 30 00.0000", FormatRA(187.5))
	assert.Equal(t, "00 00 00.0000", FormatRA(360))
	assert.Equal(t, "-00 30 00.000", FormatDec(-0.5))
	assert.Equal(t, "+45 00 00.000", FormatDec(45))
	// rounding carries into minutes instead of printing 60 seconds
	assert.Equal(t, "+10 01 00.000", FormatDec(10+0.9999999/60))
}

func TestFormat_SecondsNeverReachSixty(t *testing.T) {
	// values a hair under a minute boundary, where float remainders used to
	// round up to 60 at the printed precision
	for m := 0; m < 60; m++ {
		for _, eps := range []float64{1e-9, 4e-8, 1.3e-7, 4.9e-7} {
			dec := FormatDec(10 + (float64(m)+1)/60 - eps)
			assert.NotContains(t, dec, " 60.", dec)
			ra := FormatRA((float64(m)+1)/4 - eps)
			assert.NotContains(t, ra, " 60.", ra)
		}
	}
	for i := 0; i < 20000; i++ {
		v := float64(i) * 0.0123457
		assert.NotContains(t, FormatDec(math.Mod(v, 90)), " 60.")
		assert.NotContains(t, FormatRA(v), " 60.")
	}
	assert.Equal(t, "+10 02 00.000", FormatDec(10+2.0/60-1e-9))
	assert.Equal(t, "00 01 00.0000", FormatRA(0.25-1e-10))
}

func TestCoord_String(t *testing.T) {
	c := Coord{RA: 3.5427, Dec: -7.1991}
	assert.Equal(t, "3.54270000 -7.19910000", c.String())
	assert.False(t, math.IsNaN(c.RA))
}
