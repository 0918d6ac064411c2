package parser

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// vegeta reports latencies and durations in nanoseconds
const vegetaTimeUnit = "ns"

// vegetaRules reads fields from `vegeta report -type=json` by key path
var vegetaRules = []rule{
	{field: FieldRPS, extract: jsonNumber("", "rate")},
	{field: FieldSuccessfulRPS, optional: true, extract: jsonNumber("", "throughput")},
	{field: FieldTotalRequests, extract: jsonNumber("", "requests")},
	{field: FieldSuccessRatio, optional: true, extract: jsonNumber("", "success")},
	{field: FieldSuccessCount, extract: vegetaSuccessCount},
	{field: FieldLatencyMean, extract: jsonNumber(vegetaTimeUnit, "latencies", "mean")},
	{field: FieldLatencyMin, optional: true, extract: jsonNumber(vegetaTimeUnit, "latencies", "min")},
	{field: FieldLatencyMax, optional: true, extract: jsonNumber(vegetaTimeUnit, "latencies", "max")},
	{field: FieldLatencyP50, optional: true, extract: jsonNumber(vegetaTimeUnit, "latencies", "50th")},
	{field: FieldLatencyP90, optional: true, extract: jsonNumber(vegetaTimeUnit, "latencies", "90th")},
	{field: FieldLatencyP95, optional: true, extract: jsonNumber(vegetaTimeUnit, "latencies", "95th")},
	{field: FieldLatencyP99, optional: true, extract: jsonNumber(vegetaTimeUnit, "latencies", "99th")},
	{field: FieldBytesIn, optional: true, extract: jsonNumber("", "bytes_in", "total")},
	{field: FieldBytesOut, optional: true, extract: jsonNumber("", "bytes_out", "total")},
	{field: FieldDuration, optional: true, extract: jsonNumber(vegetaTimeUnit, "duration")},
	{field: FieldErrorTypeDescription, optional: true, extract: vegetaErrors},
}

// lookup wraps jsonparser so a missing key maps to ErrNotFound
func lookup(body string, keys ...string) ([]byte, jsonparser.ValueType, error) {
	v, dt, _, err := jsonparser.Get([]byte(body), keys...)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || dt == jsonparser.NotExist || dt == jsonparser.Null {
		return nil, dt, ErrNotFound
	}
	if err != nil {
		return nil, dt, err
	}
	return v, dt, nil
}

// jsonNumber reads a numeric value at the key path, tagging it with unit
func jsonNumber(unit string, keys ...string) func(string) (Value, error) {
	return func(body string) (Value, error) {
		v, dt, err := lookup(body, keys...)
		if err != nil {
			return Value{}, err
		}
		if dt != jsonparser.Number {
			return Value{}, fmt.Errorf("expected number, got %s", dt)
		}
		n, err := jsonparser.ParseFloat(v)
		if err != nil {
			return Value{}, fmt.Errorf("malformed number %q: %w", v, err)
		}
		return Value{Num: n, Unit: unit}, nil
	}
}

// vegetaSuccessCount reads status_codes["200"]. A missing histogram, or one
// without a 200 entry, means nothing succeeded.
func vegetaSuccessCount(body string) (Value, error) {
	_, dt, err := lookup(body, "status_codes")
	if errors.Is(err, ErrNotFound) {
		return Value{Num: 0}, nil
	}
	if err != nil {
		return Value{}, err
	}
	if dt != jsonparser.Object {
		return Value{}, fmt.Errorf("status_codes: expected object, got %s", dt)
	}

	v, err := jsonNumber("", "status_codes", "200")(body)
	if errors.Is(err, ErrNotFound) {
		return Value{Num: 0}, nil
	}
	return v, err
}

func vegetaErrors(body string) (Value, error) {
	_, dt, err := lookup(body, "errors")
	if err != nil {
		return Value{}, err
	}
	if dt != jsonparser.Array {
		return Value{}, fmt.Errorf("errors: expected array, got %s", dt)
	}

	var list []string
	_, err = jsonparser.ArrayEach([]byte(body), func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.String {
			return
		}
		s, perr := jsonparser.ParseString(value)
		if perr == nil && s != "" {
			list = append(list, s)
		}
	}, "errors")
	if err != nil {
		return Value{}, err
	}
	if len(list) == 0 {
		return Value{}, ErrNotFound
	}

	return Value{Text: joinErrors(list), List: list}, nil
}
