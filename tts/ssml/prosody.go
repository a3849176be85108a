package ssml

import (
	"fmt"
	"strconv"
	"strings"
)

// Named prosody levels. Volume is on a [0, 100] scale, rate is a
// multiplier with 1.0 as identity.
var volumeLevels = map[string]float64{
	"default": 100,
	"x-loud":  100,
	"loud":    80,
	"medium":  50,
	"soft":    30,
	"x-soft":  10,
	"silent":  0,
}

var rateLevels = map[string]float64{
	"default": 1.0,
	"x-fast":  3.0,
	"fast":    2.0,
	"medium":  1.0,
	"slow":    0.5,
	"x-slow":  0.25,
}

// Relative prosody composition order: named levels and unsigned
// values replace the inherited value outright; signed offsets add to
// the inherited value; signed percent forms scale the inherited value
// by (1 +/- p/100). Nested scopes therefore accumulate against their
// parent, not against the document default.

// parseVolume resolves a <prosody volume> attribute against the
// inherited volume. The result is clamped to [0, 100].
func parseVolume(value string, inherited float64) (float64, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return inherited, nil
	}

	if level, ok := volumeLevels[value]; ok {
		return level, nil
	}

	sign, percent, number, err := splitNumeric(value)
	if err != nil {
		return 0, fmt.Errorf("volume %q: %w", value, err)
	}

	volume := inherited
	switch {
	case percent && sign != 0:
		volume += float64(sign) * inherited * number / 100.0
	case sign != 0:
		volume += float64(sign) * number
	default:
		// Absolute, already on the [0, 100] scale.
		volume = number
	}

	return clamp(volume, 0, 100), nil
}

// parseRate resolves a <prosody rate> attribute against the inherited
// rate. "100%" and "1.0" are identity.
func parseRate(value string, inherited float64) (float64, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return inherited, nil
	}

	if level, ok := rateLevels[value]; ok {
		return level, nil
	}

	sign, percent, number, err := splitNumeric(value)
	if err != nil {
		return 0, fmt.Errorf("rate %q: %w", value, err)
	}

	rate := inherited
	switch {
	case percent && sign != 0:
		rate *= 1 + float64(sign)*number/100.0
	case percent:
		rate = number / 100.0
	case sign != 0:
		rate += float64(sign) * number
	default:
		rate = number
	}

	if rate < 0.01 {
		rate = 0.01
	}
	return rate, nil
}

// splitNumeric breaks a prosody value into sign (-1, 0, +1), percent
// flag and magnitude.
func splitNumeric(value string) (sign int, percent bool, number float64, err error) {
	switch {
	case strings.HasPrefix(value, "+"):
		sign = 1
		value = value[1:]
	case strings.HasPrefix(value, "-"):
		sign = -1
		value = value[1:]
	}

	if strings.HasSuffix(value, "%") {
		percent = true
		value = strings.TrimSuffix(value, "%")
	}

	number, err = strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, 0, fmt.Errorf("not a number")
	}
	return sign, percent, number, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
