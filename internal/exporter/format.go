package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FloatStyle selects how feature values are rendered
type FloatStyle string

const (
	// FloatStyleShortest renders the shortest decimal that round-trips,
	// always with a decimal point: 0.12, 2.0, -0.0
	FloatStyleShortest FloatStyle = "shortest"
	// FloatStyleFixed renders exactly two decimals: 0.12, 2.00, -0.00
	FloatStyleFixed FloatStyle = "fixed"
)

// ParseFloatStyle converts a configuration value to a FloatStyle
func ParseFloatStyle(s string) (FloatStyle, error) {
	switch FloatStyle(strings.ToLower(strings.TrimSpace(s))) {
	case FloatStyleShortest, "":
		return FloatStyleShortest, nil
	case FloatStyleFixed:
		return FloatStyleFixed, nil
	}
	return "", fmt.Errorf("unknown float style %q", s)
}

// formatFloat formats a feature value in the given style
func formatFloat(f float64, style FloatStyle) string {
	if style == FloatStyleFixed {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return formatShortest(f)
}

// formatShortest matches the float repr used by common dataframe writers:
// positional notation in [1e-4, 1e16), exponent notation outside it, and a
// trailing ".0" on integral values.
func formatShortest(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// formatInt formats an integer column value
func formatInt(i int) string {
	return strconv.Itoa(i)
}
