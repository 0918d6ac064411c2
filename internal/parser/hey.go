package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/moamenhredeen/proxybench/internal/units"
)

var (
	heyRPS        = regexp.MustCompile(`(?m)^[ \t]*Requests/sec:[ \t]+(\S+)`)
	heyAverage    = regexp.MustCompile(`(?m)^[ \t]*Average:[ \t]+(\S+)[ \t]+(\S+)`)
	heyFastest    = regexp.MustCompile(`(?m)^[ \t]*Fastest:[ \t]+(\S+)[ \t]+(\S+)`)
	heySlowest    = regexp.MustCompile(`(?m)^[ \t]*Slowest:[ \t]+(\S+)[ \t]+(\S+)`)
	heyTotal      = regexp.MustCompile(`(?m)^[ \t]*Total:[ \t]+(\S+)[ \t]+(\S+)`)
	heyTotalData  = regexp.MustCompile(`(?m)^[ \t]*Total data:[ \t]+(\S+)[ \t]+bytes`)
	heyStatusLine = regexp.MustCompile(`(?m)^[ \t]*\[(\d+)\][ \t]+(\S+) responses`)
	heyErrorLine  = regexp.MustCompile(`(?m)^[ \t]*\[(\S+?)\][ \t]+(.+?)[ \t]*$`)
)

const (
	heyStatusSection = "Status code distribution:"
	heyErrorSection  = "Error distribution:"
)

func heyPercentile(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + p + `%[ \t]+in[ \t]+(\S+)[ \t]+(\S+)`)
}

// heyRules extracts fields from hey's text summary
var heyRules = []rule{
	{field: FieldRPS, extract: numberRule(heyRPS)},
	{field: FieldLatencyMean, extract: timedRule(heyAverage)},
	{field: FieldLatencyMin, optional: true, extract: timedRule(heyFastest)},
	{field: FieldLatencyMax, extract: timedRule(heySlowest)},
	{field: FieldLatencyP50, optional: true, extract: timedRule(heyPercentile("50"))},
	{field: FieldLatencyP90, optional: true, extract: timedRule(heyPercentile("90"))},
	{field: FieldLatencyP95, optional: true, extract: timedRule(heyPercentile("95"))},
	{field: FieldLatencyP99, optional: true, extract: timedRule(heyPercentile("99"))},
	{field: FieldTotalRequests, extract: heyTotalRequests},
	{field: FieldTransferRate, extract: heyTransferRate},
	{field: FieldErrorCount, extract: heyErrorCount},
	{field: FieldErrorTypeDescription, optional: true, extract: heyErrorDescription},
}

// section returns the text following header up to the next blank line
func section(body, header string) (string, bool) {
	i := strings.Index(body, header)
	if i < 0 {
		return "", false
	}
	rest := body[i+len(header):]
	if end := strings.Index(rest, "\n\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

type heyError struct {
	count       float64
	description string
}

func heyErrors(body string) ([]heyError, error) {
	sec, ok := section(body, heyErrorSection)
	if !ok {
		return nil, nil
	}

	var out []heyError
	for _, m := range heyErrorLine.FindAllStringSubmatch(sec, -1) {
		n, err := parseNumber(m[1])
		if err != nil {
			return nil, fmt.Errorf("error distribution: %w", err)
		}
		out = append(out, heyError{count: n, description: m[2]})
	}
	return out, nil
}

// heyTotalRequests adds up the status code and error distributions; hey does
// not print a request total of its own
func heyTotalRequests(body string) (Value, error) {
	statusSec, hasStatus := section(body, heyStatusSection)
	_, hasErrors := section(body, heyErrorSection)
	if !hasStatus && !hasErrors {
		return Value{}, ErrNotFound
	}

	var total float64
	for _, m := range heyStatusLine.FindAllStringSubmatch(statusSec, -1) {
		n, err := parseNumber(m[2])
		if err != nil {
			return Value{}, fmt.Errorf("status code %s: %w", m[1], err)
		}
		total += n
	}

	errs, err := heyErrors(body)
	if err != nil {
		return Value{}, err
	}
	for _, e := range errs {
		total += e.count
	}

	return Value{Num: total}, nil
}

// heyTransferRate derives KB/s from "Total data" over the run's "Total" time
func heyTransferRate(body string) (Value, error) {
	dataMatch := heyTotalData.FindStringSubmatch(body)
	totalMatch := heyTotal.FindStringSubmatch(body)
	if dataMatch == nil || totalMatch == nil {
		return Value{}, ErrNotFound
	}

	bytes, err := parseNumber(dataMatch[1])
	if err != nil {
		return Value{}, err
	}
	elapsed, err := parseNumber(totalMatch[1])
	if err != nil {
		return Value{}, err
	}
	unit, err := units.ParseTimeUnit(totalMatch[2])
	if err != nil {
		return Value{}, err
	}

	seconds := units.ToMilliseconds(elapsed, unit) / 1000
	if seconds <= 0 {
		return Value{}, errors.New("zero run duration")
	}

	return Value{Num: units.BytesToKB(bytes) / seconds, Unit: units.KB.String()}, nil
}

// heyErrorCount sums the error distribution; the section is absent when no
// request failed
func heyErrorCount(body string) (Value, error) {
	errs, err := heyErrors(body)
	if err != nil {
		return Value{}, err
	}
	var total float64
	for _, e := range errs {
		total += e.count
	}
	return Value{Num: total}, nil
}

func heyErrorDescription(body string) (Value, error) {
	errs, err := heyErrors(body)
	if err != nil {
		return Value{}, err
	}
	if len(errs) == 0 {
		return Value{}, ErrNotFound
	}

	lines := make([]string, len(errs))
	types := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = fmt.Sprintf("[%.0f] %s", e.count, e.description)
		types[i] = e.description
	}
	return Value{Text: strings.Join(lines, "; "), List: types}, nil
}

// timedRule captures "<number> <unit>" from groups 1 and 2 of re
func timedRule(re *regexp.Regexp) func(string) (Value, error) {
	return func(body string) (Value, error) {
		m := re.FindStringSubmatch(body)
		if m == nil {
			return Value{}, ErrNotFound
		}
		n, err := parseNumber(m[1])
		if err != nil {
			return Value{}, err
		}
		if err := timeUnit(m[2]); err != nil {
			return Value{}, err
		}
		return Value{Num: n, Unit: m[2]}, nil
	}
}
