package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMilliseconds(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  TimeUnit
		want  float64
	}{
		{"microseconds", 1500, Microseconds, 1.5},
		{"milliseconds", 12.5, Milliseconds, 12.5},
		{"seconds", 2, Seconds, 2000},
		{"nanoseconds", 250000, Nanoseconds, 0.25},
		{"zero", 0, Seconds, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToMilliseconds(tt.value, tt.unit), 1e-9)
		})
	}
}

func TestNanosToMilliseconds(t *testing.T) {
	assert.InDelta(t, 0.25, NanosToMilliseconds(250000), 1e-12)
	assert.InDelta(t, 5.0, NanosToMilliseconds(5000000), 1e-12)
}

func TestToMBPerSecond(t *testing.T) {
	assert.InDelta(t, 0.5, ToMBPerSecond(512, KB), 1e-12)
	assert.InDelta(t, 2048.0, ToMBPerSecond(2, GB), 1e-12)
	assert.InDelta(t, 383.45, ToMBPerSecond(383.45, MB), 1e-12)
}

func TestParseTimeUnit(t *testing.T) {
	for token, want := range map[string]TimeUnit{
		"us":   Microseconds,
		"µs":   Microseconds,
		"ms":   Milliseconds,
		"s":    Seconds,
		"secs": Seconds,
		"ns":   Nanoseconds,
	} {
		got, err := ParseTimeUnit(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}

	_, err := ParseTimeUnit("m")
	assert.Error(t, err)
}

func TestParseRateUnit(t *testing.T) {
	got, err := ParseRateUnit("kb")
	require.NoError(t, err)
	assert.Equal(t, KB, got)

	got, err = ParseRateUnit("GB")
	require.NoError(t, err)
	assert.Equal(t, GB, got)

	_, err = ParseRateUnit("TB")
	assert.Error(t, err)
}
