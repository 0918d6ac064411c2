package charts

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

var (
	// ErrUnavailable is returned by builds without chart support
	ErrUnavailable = errors.New("chart rendering is not available in this build")
	// ErrNothingToPlot is returned when no scenario has data
	ErrNothingToPlot = errors.New("no scenarios to plot")
)

// Title heads the chart image
const Title = "Reverse Proxy Performance Benchmark"

// Options controls chart rendering
type Options struct {
	Dir          string           // output directory, created when missing
	DPI          int              // raster resolution
	WidthInches  float64          // full image width
	HeightInches float64          // full image height
	Footer       string           // host summary printed under the panels
	Now          func() time.Time // clock for the file name and footer
}

// DefaultOptions returns the defaults for a results root
func DefaultOptions(resultsDir string) Options {
	return Options{
		Dir:          filepath.Join(resultsDir, "charts"),
		DPI:          150,
		WidthInches:  18,
		HeightInches: 5,
		Now:          time.Now,
	}
}

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = 150
	}
	if o.WidthInches <= 0 {
		o.WidthInches = 18
	}
	if o.HeightInches <= 0 {
		o.HeightInches = 5
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// FileName returns the chart file name for the given time
func FileName(t time.Time) string {
	return fmt.Sprintf("benchmark_%s.png", t.Format("20060102_150405"))
}

// footerText joins the host summary and the generation time
func footerText(footer string, t time.Time) string {
	generated := "Generated: " + t.Format("2006-01-02 15:04")
	if footer == "" {
		return generated
	}
	return footer + " | " + generated
}
