// Package units covers the handful of physical quantities catalog queries
// are expressed in. It is not a general unit system.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit labels attached to parsed catalog columns.
const (
	MHz           = "MHz"
	GHz           = "GHz"
	MHzNm2        = "MHz nm2"
	PerSecond     = "1 / s"
	PerCentimetre = "1 / cm"
	Arcmin        = "arcmin"
)

const speedOfLight = 299792458.0 // m/s

// Frequency is stored in Hz.
type Frequency float64

func FromMHz(v float64) Frequency { return Frequency(v * 1e6) }
func FromGHz(v float64) Frequency { return Frequency(v * 1e9) }

// FromWavelength converts a vacuum wavelength in metres.
func FromWavelength(metres float64) Frequency {
	return Frequency(speedOfLight / metres)
}

func (f Frequency) GHz() float64 { return float64(f) / 1e9 }

var frequencyScales = map[string]float64{
	"hz":  1,
	"khz": 1e3,
	"mhz": 1e6,
	"ghz": 1e9,
	"thz": 1e12,
}

var wavelengthScales = map[string]float64{
	"m":  1,
	"cm": 1e-2,
	"mm": 1e-3,
	"um": 1e-6,
	"nm": 1e-9,
}

// ParseFrequency parses strings like "100 GHz", "115271.2 MHz" or a
// wavelength like "3 mm". A bare number is taken as GHz.
func ParseFrequency(s string) (Frequency, error) {
	value, unit, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	if unit == "" {
		return FromGHz(value), nil
	}
	if scale, ok := frequencyScales[unit]; ok {
		return Frequency(value * scale), nil
	}
	if scale, ok := wavelengthScales[unit]; ok {
		if value <= 0 {
			return 0, fmt.Errorf("wavelength must be positive: '%s'", s)
		}
		return FromWavelength(value * scale), nil
	}
	return 0, fmt.Errorf("unknown spectral unit '%s'", unit)
}

// Angle is stored in degrees.
type Angle float64

func FromDegrees(v float64) Angle { return Angle(v) }
func FromArcmin(v float64) Angle  { return Angle(v / 60) }

func (a Angle) Degrees() float64 { return float64(a) }
func (a Angle) Arcmin() float64  { return float64(a) * 60 }

var angleScales = map[string]float64{
	"deg":     1,
	"degree":  1,
	"degrees": 1,
	"d":       1,
	"arcmin":  1.0 / 60,
	"amin":    1.0 / 60,
	"'":       1.0 / 60,
	"arcsec":  1.0 / 3600,
	"asec":    1.0 / 3600,
	"\"":      1.0 / 3600,
}

// ParseAngle parses strings like "1 degree", "3 arcmin" or "10arcsec".
// A bare number is taken as degrees.
func ParseAngle(s string) (Angle, error) {
	value, unit, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	if unit == "" {
		return FromDegrees(value), nil
	}
	scale, ok := angleScales[unit]
	if !ok {
		return 0, fmt.Errorf("unknown angle unit '%s'", unit)
	}
	return Angle(value * scale), nil
}

func splitQuantity(s string) (float64, string, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && strings.IndexByte("+-.0123456789eE", s[end]) >= 0 {
		// an exponent marker is only part of the number when a digit follows
		if (s[end] == 'e' || s[end] == 'E') && (end+1 >= len(s) || strings.IndexByte("+-0123456789", s[end+1]) < 0) {
			break
		}
		end++
	}
	if end == 0 {
		return 0, "", fmt.Errorf("missing number in '%s'", s)
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse '%s': %w", s, err)
	}
	return value, strings.ToLower(strings.TrimSpace(s[end:])), nil
}
