package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/moamenhredeen/proxybench/internal/models"
)

// Field names a semantic value pulled out of a report
type Field string

const (
	FieldRPS                  Field = "rps"
	FieldSuccessfulRPS        Field = "successfulRps"
	FieldLatencyMean          Field = "latencyMean"
	FieldLatencyMin           Field = "latencyMin"
	FieldLatencyStdDev        Field = "latencyStdDev"
	FieldLatencyMax           Field = "latencyMax"
	FieldLatencyP50           Field = "latencyP50"
	FieldLatencyP90           Field = "latencyP90"
	FieldLatencyP95           Field = "latencyP95"
	FieldLatencyP99           Field = "latencyP99"
	FieldTotalRequests        Field = "totalRequests"
	FieldSuccessCount         Field = "successCount"
	FieldSuccessRatio         Field = "successRatio"
	FieldTransferRate         Field = "transferRate"
	FieldErrorCount           Field = "errorCount"
	FieldErrorTypeDescription Field = "errorTypeDescription"
	FieldBytesIn              Field = "bytesIn"
	FieldBytesOut             Field = "bytesOut"
	FieldDuration             Field = "duration"
)

// ErrNotFound is reported for a field whose pattern did not match
var ErrNotFound = errors.New("pattern not found")

// Value is the outcome of one field extraction. Present is false when the
// field was missing or malformed; Num, Unit, Text and List are then zero.
type Value struct {
	Num     float64
	Unit    string // unit token as printed by the tool, empty for plain numbers
	Text    string
	List    []string
	Present bool
}

// Warning describes why a field could not be extracted
type Warning struct {
	Field Field
	Err   error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %v", w.Field, w.Err)
}

// Extraction holds every field pulled out of one report
type Extraction struct {
	Format   models.ReportFormat
	Fields   map[Field]Value
	Warnings []Warning
}

// Get returns the extracted value for f; absent fields yield a zero Value
func (e Extraction) Get(f Field) Value {
	return e.Fields[f]
}

// rule extracts one field from a report body. Optional rules stay silent
// when their pattern is not found.
type rule struct {
	field    Field
	optional bool
	extract  func(body string) (Value, error)
}

// run applies each rule in isolation so one failing field never affects the others
func run(format models.ReportFormat, rules []rule, body string) Extraction {
	ext := Extraction{
		Format: format,
		Fields: make(map[Field]Value, len(rules)),
	}

	for _, r := range rules {
		v, err := r.extract(body)
		if err != nil {
			if !(r.optional && errors.Is(err, ErrNotFound)) {
				ext.Warnings = append(ext.Warnings, Warning{Field: r.field, Err: err})
			}
			continue
		}
		v.Present = true
		ext.Fields[r.field] = v
	}

	return ext
}

// parseNumber parses a captured numeric literal
func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q: %w", s, err)
	}
	return n, nil
}

// splitQuantity splits a token like "5.12ms" or "383.45MB" into its numeric
// literal and unit suffix
func splitQuantity(token string) (string, string) {
	i := strings.LastIndexAny(token, "0123456789")
	if i < 0 {
		return "", token
	}
	return token[:i+1], token[i+1:]
}
