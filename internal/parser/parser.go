package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moamenhredeen/proxybench/internal/models"
)

// ErrUnrecognizedFormat is returned for a report no known tool produced
var ErrUnrecognizedFormat = errors.New("unrecognized report format")

// ReadReport reads a report file. The proxy name comes from the containing
// directory and the scenario name from the file name without extension.
func ReadReport(path string) (models.RawReport, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return models.RawReport{}, fmt.Errorf("failed to read report: %w", err)
	}

	base := filepath.Base(path)
	return models.RawReport{
		ProxyName:    filepath.Base(filepath.Dir(path)),
		ScenarioName: strings.TrimSuffix(base, filepath.Ext(base)),
		Path:         path,
		Body:         body,
	}, nil
}

// Extract pulls every field the format's rule table knows about out of body
func Extract(body []byte, format models.ReportFormat) Extraction {
	switch format {
	case models.FormatJSONMetrics:
		return run(format, vegetaRules, string(body))
	case models.FormatTextA:
		return run(format, wrkRules, string(body))
	case models.FormatTextB:
		return run(format, heyRules, string(body))
	default:
		return Extraction{Format: models.FormatUnrecognized, Fields: map[Field]Value{}}
	}
}

// Parse detects the report's format and extracts its fields
func Parse(report models.RawReport) (Extraction, error) {
	format := Detect(report.Body)
	if format == models.FormatUnrecognized {
		return Extraction{}, fmt.Errorf("%s: %w", report.Path, ErrUnrecognizedFormat)
	}
	return Extract(report.Body, format), nil
}

func joinErrors(list []string) string {
	return strings.Join(list, "; ")
}
