package normalizer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/moamenhredeen/proxybench/internal/models"
	"github.com/moamenhredeen/proxybench/internal/parser"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizeBody(t *testing.T, body string) (models.NormalizedMetrics, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	report := models.RawReport{ProxyName: "proxyA", ScenarioName: "http", Body: []byte(body)}

	ext, err := parser.Parse(report)
	require.NoError(t, err)

	return New(logger).Normalize(report, ext), hook
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("..", "parser", "testdata", name))
	require.NoError(t, err)
	return string(body)
}

func TestNormalizeVegetaExample(t *testing.T) {
	m, _ := normalizeBody(t, `{"rate":100,"requests":1000,"success":0.95,"status_codes":{"200":950},"latencies":{"mean":5000000,"99th":20000000}}`)

	assert.Equal(t, models.FormatJSONMetrics, m.Format)
	assert.Equal(t, 100.0, m.RequestsPerSecond)
	assert.Equal(t, int64(1000), m.TotalRequests)
	assert.Equal(t, int64(50), m.ErrorCount)
	assert.InDelta(t, 5.0, m.LatencyMeanMs, 1e-12)
	assert.InDelta(t, 20.0, m.LatencyP99Ms, 1e-12)
	assert.InDelta(t, 0.95, m.SuccessRatio, 1e-12)
	assert.InDelta(t, 5.0, m.ErrorRatePercent(), 1e-12)
	assert.Empty(t, m.ErrorTypeDescription)
}

func TestNormalizeVegetaErrorCount(t *testing.T) {
	tests := []struct {
		name     string
		requests int
		ok       int
		want     int64
	}{
		{"all successful", 500, 500, 0},
		{"some failures", 500, 420, 80},
		{"none successful", 10, 0, 10},
		{"more successes than requests", 10, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"rate":1,"requests":` + strconv.Itoa(tt.requests) + `,"status_codes":{"200":` + strconv.Itoa(tt.ok) + `},"latencies":{"mean":1}}`
			m, _ := normalizeBody(t, body)
			assert.Equal(t, tt.want, m.ErrorCount)
		})
	}
}

func TestNormalizeVegetaCountsRedirectsAsErrors(t *testing.T) {
	m, _ := normalizeBody(t, fixture(t, "vegeta.json"))

	// 20 redirects + 30 bad gateways
	assert.Equal(t, int64(50), m.ErrorCount)
	assert.Equal(t, "502 Bad Gateway; Get \"http://caddy:8080/payload\": EOF", m.ErrorTypeDescription)
	assert.Len(t, m.Errors, 2)
	assert.InDelta(t, 0.25, m.LatencyMinMs, 1e-12)
	assert.InDelta(t, 45.0, m.LatencyMaxMs, 1e-12)
	assert.InDelta(t, 94.95, m.SuccessfulRPS, 1e-12)
	assert.Equal(t, int64(20480000), m.BytesIn)
	assert.InDelta(t, 1.953125, m.ThroughputMBPerSecond, 1e-9)
}

func TestNormalizeWrk(t *testing.T) {
	m, hook := normalizeBody(t, fixture(t, "wrk.txt"))

	assert.Empty(t, hook.AllEntries())
	assert.Equal(t, models.FormatTextA, m.Format)
	assert.InDelta(t, 19837.45, m.RequestsPerSecond, 1e-9)
	assert.InDelta(t, 5.12, m.LatencyMeanMs, 1e-9)
	assert.InDelta(t, 2.31, m.LatencyStdDevMs, 1e-9)
	assert.InDelta(t, 45.67, m.LatencyMaxMs, 1e-9)
	assert.InDelta(t, 383.45, m.ThroughputMBPerSecond, 1e-9)
	assert.Equal(t, int64(595312), m.TotalRequests)
	assert.Equal(t, int64(35), m.ErrorCount)
	assert.Equal(t, "Non-2xx or 3xx responses: 20; Socket errors: read 12, timeout 3", m.ErrorTypeDescription)
	assert.InDelta(t, float64(595312-35)/595312, m.SuccessRatio, 1e-12)
	assert.Zero(t, m.BytesIn)
}

func TestNormalizeWrkUnitConversions(t *testing.T) {
	m, _ := normalizeBody(t, fixture(t, "wrk_clean.txt"))

	assert.InDelta(t, 0.85, m.LatencyMeanMs, 1e-9)
	assert.InDelta(t, 0.1205, m.LatencyStdDevMs, 1e-9)
	assert.InDelta(t, 1500.0, m.LatencyMaxMs, 1e-9)
	assert.InDelta(t, 0.8, m.LatencyP50Ms, 1e-9)
	assert.InDelta(t, 0.5, m.ThroughputMBPerSecond, 1e-12)
	assert.Zero(t, m.ErrorCount)
	assert.Equal(t, 1.0, m.SuccessRatio)
	assert.Equal(t, 50000.0, m.SuccessfulRPS)
}

func TestNormalizeHey(t *testing.T) {
	m, hook := normalizeBody(t, fixture(t, "hey.txt"))

	assert.Empty(t, hook.AllEntries())
	assert.Equal(t, models.FormatTextB, m.Format)
	assert.InDelta(t, 12.5, m.LatencyMeanMs, 1e-9)
	assert.InDelta(t, 1.2, m.LatencyMinMs, 1e-9)
	assert.InDelta(t, 230.3, m.LatencyMaxMs, 1e-9)
	assert.InDelta(t, 25.0, m.LatencyP95Ms, 1e-9)
	assert.InDelta(t, 30.0, m.LatencyP99Ms, 1e-9)
	assert.Zero(t, m.LatencyStdDevMs)
	assert.InDelta(t, 2.0, m.ThroughputMBPerSecond, 1e-9)
	assert.Equal(t, int64(40000), m.TotalRequests)
	assert.Equal(t, int64(50), m.ErrorCount)
	require.Len(t, m.Errors, 2)
	assert.Contains(t, m.ErrorTypeDescription, "connection refused")
}

func TestNormalizeClampsErrorCount(t *testing.T) {
	body := strings.Replace(fixture(t, "wrk.txt"), "595312 requests in", "30 requests in", 1)

	m, hook := normalizeBody(t, body)

	assert.Equal(t, int64(30), m.TotalRequests)
	assert.Equal(t, m.TotalRequests, m.ErrorCount)
	assert.Equal(t, 100.0, m.ErrorRatePercent())

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "errorCount", last.Data["field"])
	assert.Equal(t, "proxyA", last.Data["proxy"])
}

func TestNormalizeMissingRPSKeepsRecord(t *testing.T) {
	lines := strings.Split(fixture(t, "wrk.txt"), "\n")
	var kept []string
	for _, l := range lines {
		if !strings.HasPrefix(l, "Requests/sec:") {
			kept = append(kept, l)
		}
	}

	m, hook := normalizeBody(t, strings.Join(kept, "\n"))

	assert.Zero(t, m.RequestsPerSecond)
	assert.Equal(t, int64(595312), m.TotalRequests)
	assert.InDelta(t, 5.12, m.LatencyMeanMs, 1e-9)
	assert.InDelta(t, 383.45, m.ThroughputMBPerSecond, 1e-9)
	assert.Equal(t, int64(35), m.ErrorCount)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.AllEntries()[0]
	assert.Equal(t, "rps", entry.Data["field"])
	assert.Equal(t, "proxyA", entry.Data["proxy"])
	assert.Equal(t, "http", entry.Data["scenario"])
}

func TestNormalizeDropsDescriptionWithoutErrors(t *testing.T) {
	m, _ := normalizeBody(t, `{"rate":1,"requests":2,"status_codes":{"200":2},"latencies":{"mean":1},"errors":["stale"]}`)

	assert.Zero(t, m.ErrorCount)
	assert.Empty(t, m.ErrorTypeDescription)
	assert.Equal(t, []string{"stale"}, m.Errors)
}

func TestNormalizeVegetaWithoutStatusCodes(t *testing.T) {
	m, hook := normalizeBody(t, `{"rate":100,"requests":1000,"success":0,"latencies":{"mean":5000000}}`)

	assert.Equal(t, int64(1000), m.TotalRequests)
	assert.Equal(t, m.TotalRequests, m.ErrorCount)
	assert.InDelta(t, 100.0, m.ErrorRatePercent(), 1e-12)
	assert.Zero(t, m.SuccessRatio)
	assert.Zero(t, m.SuccessfulRPS)
	assert.Empty(t, hook.AllEntries())
}

func TestNormalizeLatencyWarningsInFieldOrder(t *testing.T) {
	ext := parser.Extraction{
		Format: models.FormatTextA,
		Fields: map[parser.Field]parser.Value{
			parser.FieldLatencyMean: {Num: 1, Unit: "fortnights", Present: true},
			parser.FieldLatencyP50:  {Num: 1, Unit: "fortnights", Present: true},
			parser.FieldLatencyP99:  {Num: 1, Unit: "fortnights", Present: true},
			parser.FieldLatencyMax:  {Num: 1, Unit: "fortnights", Present: true},
		},
	}
	want := []any{
		string(parser.FieldLatencyMean),
		string(parser.FieldLatencyP50),
		string(parser.FieldLatencyP99),
		string(parser.FieldLatencyMax),
	}

	for i := 0; i < 5; i++ {
		logger, hook := test.NewNullLogger()
		New(logger).Normalize(models.RawReport{ProxyName: "p", ScenarioName: "s"}, ext)

		var got []any
		for _, e := range hook.AllEntries() {
			got = append(got, e.Data["field"])
		}
		assert.Equal(t, want, got)
	}
}

func TestNewWithoutLogger(t *testing.T) {
	n := New(nil)
	m := n.Normalize(models.RawReport{ProxyName: "p", ScenarioName: "s"}, parser.Extraction{})
	assert.Equal(t, "p", m.Proxy)
	assert.Zero(t, m.TotalRequests)
}
