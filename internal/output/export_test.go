package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/moamenhredeen/proxybench/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testStore() *models.Store {
	s := models.NewStore()
	s.Insert("nginx", "http", models.NormalizedMetrics{
		Format:            models.FormatTextA,
		RequestsPerSecond: 19837.5,
		TotalRequests:     1000,
		ErrorCount:        50,
		SuccessRatio:      0.95,
		LatencyMeanMs:     5.12,
		LatencyP99Ms:      12.5,
		Errors:            []string{"socket read error", "non-2xx or 3xx response"},
	})
	s.Insert("caddy", "https", models.NormalizedMetrics{
		Format:            models.FormatJSONMetrics,
		RequestsPerSecond: 100,
		TotalRequests:     10,
		SuccessRatio:      1,
		BytesIn:           2048,
	})
	return s
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testStore(), FormatJSON))

	var got struct {
		Proxies    []string         `json:"proxies"`
		Scenarios  []string         `json:"scenarios"`
		Records    []map[string]any `json:"records"`
		ErrorTypes []string         `json:"error_types"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, []string{"caddy", "nginx"}, got.Proxies)
	assert.Equal(t, []string{"http", "https"}, got.Scenarios)
	assert.Equal(t, []string{"non-2xx or 3xx response", "socket read error"}, got.ErrorTypes)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "caddy", got.Records[0]["proxy"])
	assert.Equal(t, "vegeta-json", got.Records[0]["format"])
	assert.Equal(t, "wrk-text", got.Records[1]["format"])
	assert.Equal(t, 50.0, got.Records[1]["error_count"])
	assert.NotContains(t, got.Records[0], "errors")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testStore(), FormatYAML))

	var got struct {
		Proxies []string `yaml:"proxies"`
		Records []struct {
			Proxy         string  `yaml:"proxy"`
			Format        string  `yaml:"format"`
			LatencyMeanMs float64 `yaml:"latency_mean_ms"`
			BytesIn       int64   `yaml:"bytes_in"`
		} `yaml:"records"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, []string{"caddy", "nginx"}, got.Proxies)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "vegeta-json", got.Records[0].Format)
	assert.Equal(t, int64(2048), got.Records[0].BytesIn)
	assert.Equal(t, 5.12, got.Records[1].LatencyMeanMs)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testStore(), FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	nginx := rows[2]
	assert.Equal(t, "nginx", nginx[0])
	assert.Equal(t, "http", nginx[1])
	assert.Equal(t, "wrk-text", nginx[2])
	assert.Equal(t, "19837.50", nginx[3])
	assert.Equal(t, "50", nginx[7])
	assert.Equal(t, "5.00", nginx[8])
	assert.Equal(t, "0.9500", nginx[9])
	assert.Equal(t, "socket read error; non-2xx or 3xx response", nginx[len(nginx)-1])
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, testStore(), Format("xml"))
	assert.EqualError(t, err, "unsupported format: xml")
}

func TestExportStoreToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, ExportStore(testStore(), FormatJSON, path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(body))
}

func TestExportStoreBadPath(t *testing.T) {
	err := ExportStore(testStore(), FormatJSON, filepath.Join(t.TempDir(), "missing", "out.json"))
	assert.ErrorContains(t, err, "failed to create output file")
}
