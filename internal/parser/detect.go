package parser

import (
	"bytes"
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/moamenhredeen/proxybench/internal/models"
)

const (
	heyHistogramMarker = "Response time histogram:"
	wrkStatsMarker     = "Thread Stats"
	wrkLatencyMarker   = "Latency Distribution"
)

// top-level keys that identify a vegeta JSON report
var vegetaKeys = []string{"rate", "status_codes", "latencies", "requests"}

// Detect classifies a report body by the markers each tool prints
func Detect(body []byte) models.ReportFormat {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return models.FormatUnrecognized
	}

	if trimmed[0] == '{' {
		if !json.Valid(trimmed) {
			return models.FormatUnrecognized
		}
		for _, key := range vegetaKeys {
			if _, _, _, err := jsonparser.Get(trimmed, key); err == nil {
				return models.FormatJSONMetrics
			}
		}
		return models.FormatUnrecognized
	}

	switch {
	case bytes.Contains(body, []byte(heyHistogramMarker)):
		return models.FormatTextB
	case bytes.Contains(body, []byte(wrkStatsMarker)), bytes.Contains(body, []byte(wrkLatencyMarker)):
		return models.FormatTextA
	}

	return models.FormatUnrecognized
}
