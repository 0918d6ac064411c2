package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/moamenhredeen/proxybench/internal/units"
)

var (
	wrkRPS        = regexp.MustCompile(`(?m)^[ \t]*Requests/sec:[ \t]+(\S+)`)
	wrkLatencyRow = regexp.MustCompile(`(?m)^[ \t]*Latency[ \t]+(\S+)[ \t]+(\S+)[ \t]+(\S+)`)
	wrkTotal      = regexp.MustCompile(`(?m)^[ \t]*(\S+) requests in `)
	wrkTransfer   = regexp.MustCompile(`(?m)^[ \t]*Transfer/sec:[ \t]+(\S+)`)
	wrkNon2xx     = regexp.MustCompile(`(?m)^[ \t]*Non-2xx or 3xx responses:[ \t]+(\S+)`)
	wrkSocket     = regexp.MustCompile(`(?m)^[ \t]*Socket errors:[ \t]*(.+)$`)
	wrkSocketPair = regexp.MustCompile(`(\w+)[ \t]+(\S+?)(?:,|$)`)
)

// wrk's Thread Stats latency row columns
const (
	wrkColAvg = iota + 1
	wrkColStdDev
	wrkColMax
)

func wrkPercentile(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + p + `(?:\.0+)?%[ \t]+(\S+)`)
}

// wrkRules extracts fields from `wrk --latency` output
var wrkRules = []rule{
	{field: FieldRPS, extract: numberRule(wrkRPS)},
	{field: FieldLatencyMean, extract: quantityRule(wrkLatencyRow, wrkColAvg, timeUnit)},
	{field: FieldLatencyStdDev, extract: quantityRule(wrkLatencyRow, wrkColStdDev, timeUnit)},
	{field: FieldLatencyMax, extract: quantityRule(wrkLatencyRow, wrkColMax, timeUnit)},
	{field: FieldLatencyP50, optional: true, extract: quantityRule(wrkPercentile("50"), 1, timeUnit)},
	{field: FieldLatencyP90, optional: true, extract: quantityRule(wrkPercentile("90"), 1, timeUnit)},
	{field: FieldLatencyP99, optional: true, extract: quantityRule(wrkPercentile("99"), 1, timeUnit)},
	{field: FieldTotalRequests, extract: numberRule(wrkTotal)},
	{field: FieldTransferRate, extract: quantityRule(wrkTransfer, 1, rateUnit)},
	{field: FieldErrorCount, extract: wrkErrorCount},
	{field: FieldErrorTypeDescription, optional: true, extract: wrkErrorDescription},
}

// socketErrors returns the non-zero socket error counters in print order
func socketErrors(body string) ([]string, []float64, error) {
	m := wrkSocket.FindStringSubmatch(body)
	if m == nil {
		return nil, nil, nil
	}

	var kinds []string
	var counts []float64
	for _, pair := range wrkSocketPair.FindAllStringSubmatch(m[1], -1) {
		n, err := parseNumber(pair[2])
		if err != nil {
			return nil, nil, fmt.Errorf("socket errors %s: %w", pair[1], err)
		}
		if n > 0 {
			kinds = append(kinds, pair[1])
			counts = append(counts, n)
		}
	}
	return kinds, counts, nil
}

// wrkErrorCount sums non-2xx/3xx responses and socket errors. wrk omits both
// lines when a run had no errors, so their absence means zero.
func wrkErrorCount(body string) (Value, error) {
	var total float64

	if m := wrkNon2xx.FindStringSubmatch(body); m != nil {
		n, err := parseNumber(m[1])
		if err != nil {
			return Value{}, err
		}
		total += n
	}

	_, counts, err := socketErrors(body)
	if err != nil {
		return Value{}, err
	}
	for _, n := range counts {
		total += n
	}

	return Value{Num: total}, nil
}

func wrkErrorDescription(body string) (Value, error) {
	var parts, types []string

	if m := wrkNon2xx.FindStringSubmatch(body); m != nil {
		parts = append(parts, "Non-2xx or 3xx responses: "+m[1])
		types = append(types, "non-2xx or 3xx response")
	}

	kinds, counts, err := socketErrors(body)
	if err != nil {
		return Value{}, err
	}
	if len(kinds) > 0 {
		pieces := make([]string, len(kinds))
		for i, k := range kinds {
			pieces[i] = fmt.Sprintf("%s %.0f", k, counts[i])
			types = append(types, "socket "+k+" error")
		}
		parts = append(parts, "Socket errors: "+strings.Join(pieces, ", "))
	}

	if len(parts) == 0 {
		return Value{}, ErrNotFound
	}
	return Value{Text: strings.Join(parts, "; "), List: types}, nil
}

// numberRule captures a plain number from group 1 of re
func numberRule(re *regexp.Regexp) func(string) (Value, error) {
	return func(body string) (Value, error) {
		m := re.FindStringSubmatch(body)
		if m == nil {
			return Value{}, ErrNotFound
		}
		n, err := parseNumber(m[1])
		if err != nil {
			return Value{}, err
		}
		return Value{Num: n}, nil
	}
}

// quantityRule captures a number with a unit suffix ("5.12ms", "383.45MB")
// from the given group of re and validates the unit with check
func quantityRule(re *regexp.Regexp, group int, check func(string) error) func(string) (Value, error) {
	return func(body string) (Value, error) {
		m := re.FindStringSubmatch(body)
		if m == nil {
			return Value{}, ErrNotFound
		}
		num, unit := splitQuantity(m[group])
		n, err := parseNumber(num)
		if err != nil {
			return Value{}, err
		}
		if err := check(unit); err != nil {
			return Value{}, err
		}
		return Value{Num: n, Unit: unit}, nil
	}
}

func timeUnit(token string) error {
	_, err := units.ParseTimeUnit(token)
	return err
}

func rateUnit(token string) error {
	_, err := units.ParseRateUnit(token)
	return err
}
