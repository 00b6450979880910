package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		shortest string
		fixed    string
	}{
		{"zero", 0.0, "0.0", "0.00"},
		{"negative zero", math.Copysign(0, -1), "-0.0", "-0.00"},
		{"integral", 2.0, "2.0", "2.00"},
		{"negative integral", -3.0, "-3.0", "-3.00"},
		{"one decimal", 2.4, "2.4", "2.40"},
		{"two decimals", -0.55, "-0.55", "-0.55"},
		{"hundredth", 0.01, "0.01", "0.01"},
		{"rounded normal", 1.52, "1.52", "1.52"},
		{"large", 123.45, "123.45", "123.45"},
		{"tiny uses exponent", 0.00001, "1e-05", "0.00"},
		{"huge uses exponent", 1e16, "1e+16", "10000000000000000.00"},
		{"lower positional bound", 0.0001, "0.0001", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shortest, formatFloat(tt.input, FloatStyleShortest))
			assert.Equal(t, tt.fixed, formatFloat(tt.input, FloatStyleFixed))
		})
	}
}

func TestFormatFloat_NonFinite(t *testing.T) {
	assert.Equal(t, "NaN", formatFloat(math.NaN(), FloatStyleShortest))
	assert.Equal(t, "+Inf", formatFloat(math.Inf(1), FloatStyleShortest))
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "99", formatInt(99))
	assert.Equal(t, "1625", formatInt(1625))
}

func TestParseFloatStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    FloatStyle
		wantErr bool
	}{
		{"shortest", FloatStyleShortest, false},
		{"", FloatStyleShortest, false},
		{" Fixed ", FloatStyleFixed, false},
		{"scientific", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFloatStyle(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
