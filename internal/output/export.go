package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/moamenhredeen/proxybench/internal/models"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Summary is the document written by the json and yaml exporters
type Summary struct {
	Proxies    []string                   `json:"proxies" yaml:"proxies"`
	Scenarios  []string                   `json:"scenarios" yaml:"scenarios"`
	Records    []models.NormalizedMetrics `json:"records" yaml:"records"`
	ErrorTypes []string                   `json:"error_types" yaml:"error_types"`
}

// NewSummary snapshots the store in sorted order
func NewSummary(store *models.Store) Summary {
	errs := store.ErrorTypes()
	if errs == nil {
		errs = []string{}
	}
	return Summary{
		Proxies:    store.AllProxies(),
		Scenarios:  store.AllScenarios(),
		Records:    store.Records(),
		ErrorTypes: errs,
	}
}

// ExportStore exports the normalized records to the specified format
func ExportStore(store *models.Store, format Format, filePath string) error {
	w, closer, err := getWriter(filePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	return Write(w, store, format)
}

// Write encodes the store to w in the given format
func Write(w io.Writer, store *models.Store, format Format) error {
	switch format {
	case FormatJSON:
		return exportJSON(w, NewSummary(store))
	case FormatCSV:
		return exportCSV(w, store.Records())
	case FormatYAML:
		return exportYAML(w, NewSummary(store))
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// getWriter returns an io.Writer for output (stdout or file)
func getWriter(filePath string) (io.Writer, io.Closer, error) {
	if filePath == "" {
		return os.Stdout, nil, nil
	}

	f, err := os.Create(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f, nil
}

func exportJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func exportYAML(w io.Writer, summary Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// csvHeader is the column order of the csv export
var csvHeader = []string{
	"proxy", "scenario", "format",
	"requests_per_sec", "successful_requests_per_sec", "throughput_mb_per_sec",
	"total_requests", "error_count", "error_rate", "success_ratio",
	"latency_mean_ms", "latency_min_ms", "latency_p50_ms", "latency_p90_ms",
	"latency_p95_ms", "latency_p99_ms", "latency_max_ms", "latency_stddev_ms",
	"bytes_in", "bytes_out", "errors",
}

func exportCSV(w io.Writer, records []models.NormalizedMetrics) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Proxy,
			r.Scenario,
			r.Format.String(),
			formatFloat(r.RequestsPerSecond),
			formatFloat(r.SuccessfulRPS),
			formatFloat(r.ThroughputMBPerSecond),
			strconv.FormatInt(r.TotalRequests, 10),
			strconv.FormatInt(r.ErrorCount, 10),
			formatFloat(r.ErrorRatePercent()),
			strconv.FormatFloat(r.SuccessRatio, 'f', 4, 64),
			formatFloat(r.LatencyMeanMs),
			formatFloat(r.LatencyMinMs),
			formatFloat(r.LatencyP50Ms),
			formatFloat(r.LatencyP90Ms),
			formatFloat(r.LatencyP95Ms),
			formatFloat(r.LatencyP99Ms),
			formatFloat(r.LatencyMaxMs),
			formatFloat(r.LatencyStdDevMs),
			strconv.FormatInt(r.BytesIn, 10),
			strconv.FormatInt(r.BytesOut, 10),
			strings.Join(r.Errors, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ParseFormat parses a string into a Format, returning error if invalid
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format '%s': must be 'json', 'csv' or 'yaml'", s)
	}
}
