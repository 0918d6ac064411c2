package models

// ReportFormat identifies which benchmarking tool produced a report
type ReportFormat int

const (
	// FormatUnrecognized marks a body no known tool produced
	FormatUnrecognized ReportFormat = iota
	// FormatJSONMetrics is vegeta's JSON report
	FormatJSONMetrics
	// FormatTextA is wrk's text output (run with --latency)
	FormatTextA
	// FormatTextB is hey's text output
	FormatTextB
)

func (f ReportFormat) String() string {
	switch f {
	case FormatJSONMetrics:
		return "vegeta-json"
	case FormatTextA:
		return "wrk-text"
	case FormatTextB:
		return "hey-text"
	default:
		return "unrecognized"
	}
}

// MarshalText lets formats appear by name in JSON and YAML exports
func (f ReportFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// RawReport is one report file read from the results tree
type RawReport struct {
	ProxyName    string // name of the containing directory
	ScenarioName string // file name without extension
	Path         string
	Body         []byte
}
