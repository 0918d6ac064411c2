package units

import (
	"fmt"
	"strings"
)

// TimeUnit is the unit a latency value was reported in
type TimeUnit int

const (
	Microseconds TimeUnit = iota
	Milliseconds
	Seconds
	Nanoseconds
)

// RateUnit is the unit a transfer rate was reported in (per second)
type RateUnit int

const (
	KB RateUnit = iota
	MB
	GB
)

const (
	nanosPerMilli  = 1_000_000
	microsPerMilli = 1000
	millisPerSec   = 1000
	bytesPerUnit   = 1024
)

// ParseTimeUnit maps a unit token printed by a benchmarking tool to a TimeUnit
func ParseTimeUnit(token string) (TimeUnit, error) {
	switch strings.TrimSpace(token) {
	case "ns":
		return Nanoseconds, nil
	case "us", "µs", "μs":
		return Microseconds, nil
	case "ms":
		return Milliseconds, nil
	case "s", "sec", "secs":
		return Seconds, nil
	default:
		return 0, fmt.Errorf("unknown time unit %q", token)
	}
}

// ParseRateUnit maps a data-rate unit token (KB, MB, GB) to a RateUnit
func ParseRateUnit(token string) (RateUnit, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "KB":
		return KB, nil
	case "MB":
		return MB, nil
	case "GB":
		return GB, nil
	default:
		return 0, fmt.Errorf("unknown rate unit %q", token)
	}
}

// ToMilliseconds converts a time value in the given unit to milliseconds
func ToMilliseconds(v float64, unit TimeUnit) float64 {
	switch unit {
	case Nanoseconds:
		return NanosToMilliseconds(v)
	case Microseconds:
		return v / microsPerMilli
	case Seconds:
		return v * millisPerSec
	default:
		return v
	}
}

// NanosToMilliseconds converts nanoseconds (vegeta's native latency unit) to milliseconds
func NanosToMilliseconds(v float64) float64 {
	return v / nanosPerMilli
}

// ToMBPerSecond converts a per-second data rate to MB/s
func ToMBPerSecond(v float64, unit RateUnit) float64 {
	switch unit {
	case KB:
		return v / bytesPerUnit
	case GB:
		return v * bytesPerUnit
	default:
		return v
	}
}

// BytesToKB converts a byte count to KB
func BytesToKB(v float64) float64 {
	return v / bytesPerUnit
}

func (u TimeUnit) String() string {
	switch u {
	case Nanoseconds:
		return "ns"
	case Microseconds:
		return "us"
	case Milliseconds:
		return "ms"
	case Seconds:
		return "s"
	default:
		return "unknown"
	}
}

func (u RateUnit) String() string {
	switch u {
	case KB:
		return "KB"
	case MB:
		return "MB"
	case GB:
		return "GB"
	default:
		return "unknown"
	}
}
