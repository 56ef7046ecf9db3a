package editor

import (
	"math"
	"regexp"
	"strconv"

	"artboard/internal/domain"
)

// PixelsPerInch is the fixed device-pixel ratio of physical units.
const PixelsPerInch = 96.0

// ToPixels converts v from unit u to device pixels.
func ToPixels(v float64, u domain.Unit) float64 {
	if u == domain.UnitInch {
		return v * PixelsPerInch
	}
	return v
}

// FromPixels converts px to unit u. Physical units are rounded to two
// decimals so stored values re-render without drift.
func FromPixels(px float64, u domain.Unit) float64 {
	if u == domain.UnitInch {
		return round2(px / PixelsPerInch)
	}
	return px
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var numericInput = regexp.MustCompile(`^\d*\.?\d*$`)

// parseNumeric validates free-form numeric input. The empty string is
// accepted and clears the value.
func parseNumeric(s string) (*float64, bool) {
	if !numericInput.MatchString(s) {
		return nil, false
	}
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// "." matches the pattern but is not a number
		return nil, false
	}
	return &v, true
}
