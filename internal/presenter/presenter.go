package presenter

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/moamenhredeen/proxybench/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ruleWidth = 150
	// TableTitle heads the comparison table
	TableTitle = "REVERSE PROXY BENCHMARK RESULTS"
	// NoErrorsMessage replaces the error summary when no record has errors
	NoErrorsMessage = "No errors detected in any benchmarks"
)

// PreferredScenarios lists the scenarios that always come first, in order
var PreferredScenarios = []string{"http", "https", "https_http2"}

var displayNames = map[string]string{
	"http":        "HTTP/1.1",
	"https":       "HTTPS/1.1",
	"https_http2": "HTTPS/2",
}

var titleCaser = cases.Title(language.English)

// DisplayName returns the human readable label for a scenario
func DisplayName(scenario string) string {
	if name, ok := displayNames[scenario]; ok {
		return name
	}
	return titleCaser.String(strings.ReplaceAll(scenario, "_", " "))
}

// OrderScenarios puts the preferred scenarios first and appends the
// remaining ones alphabetically. Duplicates are dropped.
func OrderScenarios(scenarios []string) []string {
	seen := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		seen[s] = true
	}

	ordered := make([]string, 0, len(seen))
	for _, s := range PreferredScenarios {
		if seen[s] {
			ordered = append(ordered, s)
			delete(seen, s)
		}
	}

	rest := make([]string, 0, len(seen))
	for s := range seen {
		rest = append(rest, s)
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

// Section is one scenario block of the comparison table
type Section struct {
	Scenario string
	Title    string
	Rows     []models.NormalizedMetrics
}

// Sections groups the store by scenario. Proxies without a record for a
// scenario are left out of that section.
func Sections(store *models.Store) []Section {
	proxies := store.AllProxies()

	var sections []Section
	for _, scenario := range OrderScenarios(store.AllScenarios()) {
		sec := Section{Scenario: scenario, Title: DisplayName(scenario)}
		for _, proxy := range proxies {
			if m, ok := store.Get(proxy, scenario); ok {
				sec.Rows = append(sec.Rows, m)
			}
		}
		sections = append(sections, sec)
	}
	return sections
}

// RenderTable writes the grouped comparison table
func RenderTable(w io.Writer, store *models.Store) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", ruleWidth)
	dash := strings.Repeat("-", ruleWidth)

	fmt.Fprintf(bw, "\n%s\n%s\n%s\n", rule, TableTitle, rule)

	for _, sec := range Sections(store) {
		fmt.Fprintf(bw, "\n%s\n%s\n", sec.Title, dash)
		fmt.Fprintf(bw, "%-18s %10s %12s %10s %10s %10s %10s %8s %8s\n",
			"Proxy", "Req/s", "Throughput", "Mean(ms)", "P99(ms)", "Max(ms)", "Success", "Errors", "Error%")
		fmt.Fprintln(bw, dash)

		for _, m := range sec.Rows {
			fmt.Fprintln(bw, formatRow(m))
		}
	}

	return bw.Flush()
}

func formatRow(m models.NormalizedMetrics) string {
	return fmt.Sprintf("%-18s %10.1f %12.1f %10.2f %10.2f %10.2f %9.1f%% %8d %7.2f%%",
		m.Proxy,
		m.RequestsPerSecond,
		m.ThroughputMBPerSecond,
		m.LatencyMeanMs,
		m.LatencyP99Ms,
		m.LatencyMaxMs,
		m.SuccessPercent(),
		m.ErrorCount,
		m.ErrorRatePercent(),
	)
}

// RenderErrorSummary writes every distinct error description, sorted
func RenderErrorSummary(w io.Writer, store *models.Store) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintf(bw, "\n%s\n", rule)
	errs := store.ErrorTypes()
	if len(errs) == 0 {
		fmt.Fprintln(bw, NoErrorsMessage)
	} else {
		fmt.Fprintf(bw, "ERROR TYPES SUMMARY\n%s\n", rule)
		for _, e := range errs {
			fmt.Fprintf(bw, "  • %s\n", e)
		}
	}
	fmt.Fprintln(bw, rule)

	return bw.Flush()
}
