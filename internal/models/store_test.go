package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreInsertAndGet(t *testing.T) {
	s := NewStore()
	s.Insert("nginx", "http", NormalizedMetrics{RequestsPerSecond: 100})

	m, ok := s.Get("nginx", "http")
	require.True(t, ok)
	assert.Equal(t, 100.0, m.RequestsPerSecond)
	assert.Equal(t, "nginx", m.Proxy)
	assert.Equal(t, "http", m.Scenario)

	_, ok = s.Get("nginx", "https")
	assert.False(t, ok)
	_, ok = s.Get("caddy", "http")
	assert.False(t, ok)
}

func TestStoreInsertOverwrites(t *testing.T) {
	s := NewStore()
	s.Insert("nginx", "http", NormalizedMetrics{RequestsPerSecond: 100})
	s.Insert("nginx", "http", NormalizedMetrics{RequestsPerSecond: 250})

	m, _ := s.Get("nginx", "http")
	assert.Equal(t, 250.0, m.RequestsPerSecond)
	assert.Equal(t, 1, s.Len())
}

func TestStoreInsertIsIdempotent(t *testing.T) {
	record := NormalizedMetrics{RequestsPerSecond: 42, TotalRequests: 10, ErrorCount: 1}

	once := NewStore()
	once.Insert("traefik", "https", record)

	twice := NewStore()
	twice.Insert("traefik", "https", record)
	twice.Insert("traefik", "https", record)

	assert.Equal(t, once.Records(), twice.Records())
}

func TestStoreSortedIteration(t *testing.T) {
	s := NewStore()
	s.Insert("traefik", "https_http2", NormalizedMetrics{})
	s.Insert("caddy", "http", NormalizedMetrics{})
	s.Insert("nginx", "https", NormalizedMetrics{})
	s.Insert("caddy", "custom", NormalizedMetrics{})

	assert.Equal(t, []string{"caddy", "nginx", "traefik"}, s.AllProxies())
	assert.Equal(t, []string{"custom", "http", "https", "https_http2"}, s.AllScenarios())
	assert.Equal(t, 4, s.Len())

	records := s.Records()
	require.Len(t, records, 4)
	assert.Equal(t, "caddy", records[0].Proxy)
	assert.Equal(t, "custom", records[0].Scenario)
	assert.Equal(t, "http", records[1].Scenario)
	assert.Equal(t, "traefik", records[3].Proxy)
}

func TestStoreErrorTypes(t *testing.T) {
	s := NewStore()
	s.Insert("a", "http", NormalizedMetrics{Errors: []string{"EOF", "502 Bad Gateway"}})
	s.Insert("b", "http", NormalizedMetrics{Errors: []string{"EOF"}})
	s.Insert("b", "https", NormalizedMetrics{})

	assert.Equal(t, []string{"502 Bad Gateway", "EOF"}, s.ErrorTypes())
	assert.Empty(t, NewStore().ErrorTypes())
}

func TestErrorRatePercent(t *testing.T) {
	assert.InDelta(t, 5.0, NormalizedMetrics{TotalRequests: 1000, ErrorCount: 50}.ErrorRatePercent(), 1e-9)
	assert.Zero(t, NormalizedMetrics{ErrorCount: 3}.ErrorRatePercent())
	assert.InDelta(t, 95.0, NormalizedMetrics{SuccessRatio: 0.95}.SuccessPercent(), 1e-9)
}

func TestReportFormatString(t *testing.T) {
	assert.Equal(t, "vegeta-json", FormatJSONMetrics.String())
	assert.Equal(t, "wrk-text", FormatTextA.String())
	assert.Equal(t, "hey-text", FormatTextB.String())
	assert.Equal(t, "unrecognized", FormatUnrecognized.String())

	text, err := FormatTextB.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "hey-text", string(text))
}
