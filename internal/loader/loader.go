package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moamenhredeen/proxybench/internal/models"
	"github.com/moamenhredeen/proxybench/internal/normalizer"
	"github.com/moamenhredeen/proxybench/internal/parser"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrResultsNotFound is returned when the results root is missing or not a directory
	ErrResultsNotFound = errors.New("results directory not found")
	// ErrNoReports is returned when the results root holds no parseable report
	ErrNoReports = errors.New("no benchmark data found")
)

// EventType represents the type of load event
type EventType int

const (
	// EventScanStarting indicates report files were discovered
	EventScanStarting EventType = iota
	// EventFileParsed indicates a report was normalized and stored
	EventFileParsed
	// EventFileSkipped indicates a report could not be read or recognized
	EventFileSkipped
	// EventScanCompleted indicates every discovered file was processed
	EventScanCompleted
)

// LoadEvent represents an event while loading the results tree
type LoadEvent struct {
	Type     EventType
	Path     string
	Proxy    string
	Scenario string
	Format   models.ReportFormat
	Metrics  *models.NormalizedMetrics // set for EventFileParsed
	Err      error                     // set for EventFileSkipped
	Index    int                       // files processed so far
	Total    int                       // files discovered
}

// OnLoadEvent is a callback function for load events
type OnLoadEvent func(event LoadEvent)

// Config holds loader configuration
type Config struct {
	Workers    int      // Number of files parsed concurrently
	Extensions []string // Report file extensions, with leading dot
	IgnoreDirs []string // Top-level directories that are not proxies
}

// DefaultConfig returns default loader configuration
func DefaultConfig() Config {
	return Config{
		Workers:    1,
		Extensions: []string{".json", ".txt"},
		IgnoreDirs: []string{"charts"},
	}
}

// Loader discovers report files and fills a Store with their metrics
type Loader struct {
	config     Config
	log        logrus.FieldLogger
	normalizer *normalizer.Normalizer
}

// NewLoader creates a new loader instance
func NewLoader(config Config, log logrus.FieldLogger) *Loader {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Loader{
		config:     config,
		log:        log,
		normalizer: normalizer.New(log),
	}
}

// Discover lists report files under root/<proxy>/ in sorted order
func (l *Loader) Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", root, ErrResultsNotFound)
		}
		return nil, fmt.Errorf("failed to stat results directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", root, ErrResultsNotFound)
	}

	proxies, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var files []string
	for _, proxy := range proxies {
		if !proxy.IsDir() || l.ignored(proxy.Name()) {
			continue
		}

		dir := filepath.Join(root, proxy.Name())
		entries, err := os.ReadDir(dir)
		if err != nil {
			l.log.WithField("path", dir).Warnf("skipping unreadable proxy directory: %v", err)
			continue
		}

		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !l.isReport(e.Name()) {
				continue
			}
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

func (l *Loader) ignored(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, d := range l.config.IgnoreDirs {
		if d == name {
			return true
		}
	}
	return false
}

func (l *Loader) isReport(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range l.config.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// fileResult holds the outcome of processing one report file
type fileResult struct {
	report  models.RawReport
	path    string
	format  models.ReportFormat
	metrics models.NormalizedMetrics
	err     error
}

// processFile reads, detects, extracts and normalizes one report
func (l *Loader) processFile(path string) fileResult {
	res := fileResult{path: path}

	report, err := parser.ReadReport(path)
	if err != nil {
		res.err = err
		return res
	}
	res.report = report

	ext, err := parser.Parse(report)
	if err != nil {
		res.err = err
		return res
	}

	res.format = ext.Format
	res.metrics = l.normalizer.Normalize(report, ext)
	return res
}

// Load processes every report under root and returns the filled store.
// Unreadable or unrecognized files are skipped; only a missing or empty
// results tree is an error.
func (l *Loader) Load(ctx context.Context, root string, onEvent OnLoadEvent) (*models.Store, error) {
	files, err := l.Discover(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoReports)
	}

	emit := func(e LoadEvent) {
		if onEvent != nil {
			onEvent(e)
		}
	}
	emit(LoadEvent{Type: EventScanStarting, Total: len(files)})

	results := make(chan fileResult)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.Workers)

	go func() {
		for _, path := range files {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res := l.processFile(path)
				select {
				case results <- res:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		_ = g.Wait()
		close(results)
	}()

	// Inserts happen only here, one completed file at a time
	store := models.NewStore()
	processed := 0
	for res := range results {
		processed++
		event := LoadEvent{
			Path:     res.path,
			Proxy:    res.report.ProxyName,
			Scenario: res.report.ScenarioName,
			Format:   res.format,
			Index:    processed,
			Total:    len(files),
		}

		if res.err != nil {
			l.log.WithField("path", res.path).Warnf("skipping report: %v", res.err)
			event.Type = EventFileSkipped
			event.Err = res.err
			emit(event)
			continue
		}

		store.Insert(res.report.ProxyName, res.report.ScenarioName, res.metrics)
		m := res.metrics
		event.Type = EventFileParsed
		event.Metrics = &m
		emit(event)
	}

	emit(LoadEvent{Type: EventScanCompleted, Index: processed, Total: len(files)})

	if err := ctx.Err(); err != nil {
		return store, fmt.Errorf("loading interrupted: %w", err)
	}
	if store.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoReports)
	}
	return store, nil
}
