package models

// NormalizedMetrics is the unit-converted, cross-tool record for one
// proxy/scenario pair. Latencies are in milliseconds, throughput in MB/s.
type NormalizedMetrics struct {
	Proxy    string       `json:"proxy" yaml:"proxy"`
	Scenario string       `json:"scenario" yaml:"scenario"`
	Format   ReportFormat `json:"format" yaml:"format"`

	// Throughput
	RequestsPerSecond     float64 `json:"requests_per_sec" yaml:"requests_per_sec"`
	SuccessfulRPS         float64 `json:"successful_requests_per_sec" yaml:"successful_requests_per_sec"`
	ThroughputMBPerSecond float64 `json:"throughput_mb_per_sec" yaml:"throughput_mb_per_sec"`

	// Counts
	TotalRequests int64   `json:"total_requests" yaml:"total_requests"`
	ErrorCount    int64   `json:"error_count" yaml:"error_count"`
	SuccessRatio  float64 `json:"success_ratio" yaml:"success_ratio"`

	// Latency statistics
	LatencyMeanMs   float64 `json:"latency_mean_ms" yaml:"latency_mean_ms"`
	LatencyMinMs    float64 `json:"latency_min_ms" yaml:"latency_min_ms"`
	LatencyP50Ms    float64 `json:"latency_p50_ms" yaml:"latency_p50_ms"`
	LatencyP90Ms    float64 `json:"latency_p90_ms" yaml:"latency_p90_ms"`
	LatencyP95Ms    float64 `json:"latency_p95_ms" yaml:"latency_p95_ms"`
	LatencyP99Ms    float64 `json:"latency_p99_ms" yaml:"latency_p99_ms"`
	LatencyMaxMs    float64 `json:"latency_max_ms" yaml:"latency_max_ms"`
	LatencyStdDevMs float64 `json:"latency_stddev_ms" yaml:"latency_stddev_ms"`

	// Error breakdown, empty unless ErrorCount > 0
	ErrorTypeDescription string   `json:"error_type_description,omitempty" yaml:"error_type_description,omitempty"`
	Errors               []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Transferred bytes (vegeta only)
	BytesIn  int64 `json:"bytes_in" yaml:"bytes_in"`
	BytesOut int64 `json:"bytes_out" yaml:"bytes_out"`
}

// ErrorRatePercent returns the share of failed requests as a percentage
func (m NormalizedMetrics) ErrorRatePercent() float64 {
	if m.TotalRequests <= 0 {
		return 0
	}
	return float64(m.ErrorCount) / float64(m.TotalRequests) * 100
}

// SuccessPercent returns SuccessRatio as a percentage
func (m NormalizedMetrics) SuccessPercent() float64 {
	return m.SuccessRatio * 100
}
