package models

import "sort"

// Store holds normalized metrics keyed by proxy, then scenario.
// It is not safe for concurrent writers; callers serialize Insert.
type Store struct {
	records map[string]map[string]NormalizedMetrics
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{records: make(map[string]map[string]NormalizedMetrics)}
}

// Insert stores metrics for proxy/scenario, replacing any existing entry
func (s *Store) Insert(proxy, scenario string, metrics NormalizedMetrics) {
	scenarios, ok := s.records[proxy]
	if !ok {
		scenarios = make(map[string]NormalizedMetrics)
		s.records[proxy] = scenarios
	}
	metrics.Proxy = proxy
	metrics.Scenario = scenario
	scenarios[scenario] = metrics
}

// Get returns the metrics recorded for proxy/scenario
func (s *Store) Get(proxy, scenario string) (NormalizedMetrics, bool) {
	m, ok := s.records[proxy][scenario]
	return m, ok
}

// AllProxies returns every proxy name in sorted order
func (s *Store) AllProxies() []string {
	proxies := make([]string, 0, len(s.records))
	for p := range s.records {
		proxies = append(proxies, p)
	}
	sort.Strings(proxies)
	return proxies
}

// AllScenarios returns every scenario name seen for any proxy, sorted
func (s *Store) AllScenarios() []string {
	seen := make(map[string]struct{})
	for _, scenarios := range s.records {
		for sc := range scenarios {
			seen[sc] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for sc := range seen {
		out = append(out, sc)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored records
func (s *Store) Len() int {
	n := 0
	for _, scenarios := range s.records {
		n += len(scenarios)
	}
	return n
}

// Records returns every record ordered by proxy, then scenario
func (s *Store) Records() []NormalizedMetrics {
	out := make([]NormalizedMetrics, 0, s.Len())
	for _, p := range s.AllProxies() {
		scenarios := make([]string, 0, len(s.records[p]))
		for sc := range s.records[p] {
			scenarios = append(scenarios, sc)
		}
		sort.Strings(scenarios)
		for _, sc := range scenarios {
			out = append(out, s.records[p][sc])
		}
	}
	return out
}

// ErrorTypes returns the distinct error descriptions across all records, sorted
func (s *Store) ErrorTypes() []string {
	seen := make(map[string]struct{})
	for _, scenarios := range s.records {
		for _, m := range scenarios {
			for _, e := range m.Errors {
				seen[e] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
