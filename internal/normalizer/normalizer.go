package normalizer

import (
	"math"

	"github.com/moamenhredeen/proxybench/internal/models"
	"github.com/moamenhredeen/proxybench/internal/parser"
	"github.com/moamenhredeen/proxybench/internal/units"
	"github.com/sirupsen/logrus"
)

// Normalizer turns extracted report fields into NormalizedMetrics
type Normalizer struct {
	log logrus.FieldLogger
}

// New creates a normalizer that reports field problems to log
func New(log logrus.FieldLogger) *Normalizer {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Normalizer{log: log}
}

type latencyTarget struct {
	field parser.Field
	dst   *float64
}

// latencyTargets lists latency fields and the record fields they fill, in
// the order their warnings are logged
func latencyTargets(m *models.NormalizedMetrics) []latencyTarget {
	return []latencyTarget{
		{parser.FieldLatencyMean, &m.LatencyMeanMs},
		{parser.FieldLatencyMin, &m.LatencyMinMs},
		{parser.FieldLatencyP50, &m.LatencyP50Ms},
		{parser.FieldLatencyP90, &m.LatencyP90Ms},
		{parser.FieldLatencyP95, &m.LatencyP95Ms},
		{parser.FieldLatencyP99, &m.LatencyP99Ms},
		{parser.FieldLatencyMax, &m.LatencyMaxMs},
		{parser.FieldLatencyStdDev, &m.LatencyStdDevMs},
	}
}

// Normalize builds the record for one report. It never fails: any field that
// cannot be used is left at zero and logged.
func (n *Normalizer) Normalize(report models.RawReport, ext parser.Extraction) models.NormalizedMetrics {
	log := n.log.WithFields(logrus.Fields{
		"proxy":    report.ProxyName,
		"scenario": report.ScenarioName,
		"format":   ext.Format.String(),
	})

	for _, w := range ext.Warnings {
		log.WithField("field", string(w.Field)).Warnf("field defaulted: %v", w.Err)
	}

	m := models.NormalizedMetrics{
		Proxy:    report.ProxyName,
		Scenario: report.ScenarioName,
		Format:   ext.Format,
	}

	m.RequestsPerSecond = nonNegative(log, parser.FieldRPS, ext.Get(parser.FieldRPS).Num)

	for _, t := range latencyTargets(&m) {
		*t.dst = n.milliseconds(log, t.field, ext.Get(t.field))
	}

	m.TotalRequests = count(log, parser.FieldTotalRequests, ext.Get(parser.FieldTotalRequests).Num)
	m.ThroughputMBPerSecond = n.throughput(log, ext)
	m.ErrorCount = n.errorCount(log, ext, m.TotalRequests)

	// Reported error kinds feed the summary even when every request succeeded
	if desc := ext.Get(parser.FieldErrorTypeDescription); desc.Present {
		m.Errors = append([]string(nil), desc.List...)
		if m.ErrorCount > 0 {
			m.ErrorTypeDescription = desc.Text
		}
	}

	m.SuccessRatio = successRatio(ext, m)
	if v := ext.Get(parser.FieldSuccessfulRPS); v.Present {
		m.SuccessfulRPS = nonNegative(log, parser.FieldSuccessfulRPS, v.Num)
	} else {
		m.SuccessfulRPS = m.RequestsPerSecond * m.SuccessRatio
	}

	if ext.Format == models.FormatJSONMetrics {
		m.BytesIn = count(log, parser.FieldBytesIn, ext.Get(parser.FieldBytesIn).Num)
		m.BytesOut = count(log, parser.FieldBytesOut, ext.Get(parser.FieldBytesOut).Num)
	}

	return m
}

// milliseconds converts a present time value using its captured unit
func (n *Normalizer) milliseconds(log logrus.FieldLogger, field parser.Field, v parser.Value) float64 {
	if !v.Present {
		return 0
	}
	unit, err := units.ParseTimeUnit(v.Unit)
	if err != nil {
		log.WithField("field", string(field)).Warnf("field defaulted: %v", err)
		return 0
	}
	return nonNegative(log, field, units.ToMilliseconds(v.Num, unit))
}

// throughput returns MB/s from a reported transfer rate, or for vegeta from
// bytes received over the attack duration
func (n *Normalizer) throughput(log logrus.FieldLogger, ext parser.Extraction) float64 {
	if rate := ext.Get(parser.FieldTransferRate); rate.Present {
		unit, err := units.ParseRateUnit(rate.Unit)
		if err != nil {
			log.WithField("field", string(parser.FieldTransferRate)).Warnf("field defaulted: %v", err)
			return 0
		}
		return nonNegative(log, parser.FieldTransferRate, units.ToMBPerSecond(rate.Num, unit))
	}

	bytesIn := ext.Get(parser.FieldBytesIn)
	duration := ext.Get(parser.FieldDuration)
	if !bytesIn.Present || !duration.Present || duration.Num <= 0 {
		return 0
	}
	seconds := units.NanosToMilliseconds(duration.Num) / 1000
	return units.ToMBPerSecond(units.BytesToKB(bytesIn.Num), units.KB) / seconds
}

// errorCount reconciles the reported error figures with the request total.
// For vegeta every non-200 response counts as an error, redirects included.
func (n *Normalizer) errorCount(log logrus.FieldLogger, ext parser.Extraction, total int64) int64 {
	var errs int64

	if ext.Format == models.FormatJSONMetrics {
		success := ext.Get(parser.FieldSuccessCount)
		if !success.Present {
			return 0
		}
		errs = total - int64(success.Num)
	} else {
		v := ext.Get(parser.FieldErrorCount)
		if !v.Present {
			return 0
		}
		errs = int64(v.Num)
	}

	switch {
	case errs > total:
		log.WithFields(logrus.Fields{
			"field":    string(parser.FieldErrorCount),
			"reported": errs,
			"total":    total,
		}).Warn("error count exceeds total requests, clamping")
		return total
	case errs < 0:
		log.WithFields(logrus.Fields{
			"field":    string(parser.FieldErrorCount),
			"reported": errs,
		}).Warn("negative error count, clamping to zero")
		return 0
	}
	return errs
}

func successRatio(ext parser.Extraction, m models.NormalizedMetrics) float64 {
	if v := ext.Get(parser.FieldSuccessRatio); v.Present && v.Num >= 0 && v.Num <= 1 {
		return v.Num
	}
	if m.TotalRequests <= 0 {
		return 0
	}
	return float64(m.TotalRequests-m.ErrorCount) / float64(m.TotalRequests)
}

func nonNegative(log logrus.FieldLogger, field parser.Field, v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		log.WithField("field", string(field)).Warnf("field defaulted: invalid value %v", v)
		return 0
	}
	return v
}

func count(log logrus.FieldLogger, field parser.Field, v float64) int64 {
	return int64(math.Round(nonNegative(log, field, v)))
}
