package service

import (
	"regexp"
	"strconv"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
)

// plain decimal notation: sign, digits, optional fraction and exponent
var decimalRegexp = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Coerce converts a raw dxs value into an observation for a slot with the
// given unit. Slots without unit always get the raw text. Values that are not
// decimal numbers become Undefined, as do numbers outside the float64 range.
func Coerce(raw string, unit domain.Unit) domain.Observation {
	if unit == domain.UNIT_NONE {
		return domain.Text{Value: raw}
	}
	value, ok := parseDecimal(raw)
	if !ok {
		return domain.Undefined{}
	}
	return domain.Measurement{Value: value, Unit: unit}
}

func parseDecimal(raw string) (float64, bool) {
	if !decimalRegexp.MatchString(raw) {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// out of float64 range
		return 0, false
	}
	return value, true
}
