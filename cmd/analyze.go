/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/moamenhredeen/proxybench/internal/charts"
	"github.com/moamenhredeen/proxybench/internal/loader"
	"github.com/moamenhredeen/proxybench/internal/models"
	"github.com/moamenhredeen/proxybench/internal/output"
	"github.com/moamenhredeen/proxybench/internal/presenter"
	"github.com/moamenhredeen/proxybench/internal/sysinfo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the comparison table for a results directory",
	Long: `Load every report under the results directory, print one comparison
table per scenario and a summary of the error types seen.

Examples:
  # Analyze ./results and render a chart into ./results/charts
  proxybench analyze

  # Parse reports with 4 workers, no chart
  proxybench analyze -d ./bench-results -w 4 --no-charts

  # Export the normalized records
  proxybench analyze -o csv --output-file results.csv`,
	Args: cobra.NoArgs,
	Run:  runAnalyze,
}

// analyzeOptions holds the resolved configuration of one analysis run
type analyzeOptions struct {
	ResultsDir   string
	Workers      int
	Charts       bool
	ChartsDir    string
	ChartsDPI    int
	OutputFormat string
	OutputFile   string
	Verbose      bool
}

func optionsFromViper(v *viper.Viper, noCharts bool) analyzeOptions {
	opts := analyzeOptions{
		ResultsDir:   v.GetString("results_dir"),
		Workers:      v.GetInt("workers"),
		Charts:       v.GetBool("charts.enabled") && !noCharts,
		ChartsDir:    v.GetString("charts.dir"),
		ChartsDPI:    v.GetInt("charts.dpi"),
		OutputFormat: v.GetString("output.format"),
		OutputFile:   v.GetString("output.file"),
		Verbose:      v.GetBool("verbose"),
	}
	if opts.ResultsDir == "" {
		opts.ResultsDir = "results"
	}
	return opts
}

func runAnalyze(cmd *cobra.Command, args []string) {
	noCharts, _ := cmd.Flags().GetBool("no-charts")
	opts := optionsFromViper(viper.GetViper(), noCharts)

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n\nInterrupted, showing partial results...")
		cancel()
	}()

	a := &analyzer{
		opts:   opts,
		log:    logger,
		stdout: os.Stdout,
		stderr: os.Stderr,
		tty:    isTTY,
		now:    time.Now,
	}
	if err := a.run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err, opts.ResultsDir))
		os.Exit(1)
	}
}

// errorMessage turns a failed run into the line printed before exiting
func errorMessage(err error, resultsDir string) string {
	switch {
	case errors.Is(err, loader.ErrResultsNotFound):
		return fmt.Sprintf("Error: Results directory '%s' not found", resultsDir)
	case errors.Is(err, loader.ErrNoReports):
		return fmt.Sprintf("Error: No benchmark data found in '%s' directory", resultsDir)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// analyzer runs one analysis and writes its report
type analyzer struct {
	opts   analyzeOptions
	log    logrus.FieldLogger
	stdout io.Writer
	stderr io.Writer
	tty    bool
	now    func() time.Time
}

func (a *analyzer) run(ctx context.Context) error {
	var format output.Format
	if a.opts.OutputFormat != "" {
		f, err := output.ParseFormat(a.opts.OutputFormat)
		if err != nil {
			return err
		}
		format = f
	}

	store, err := a.load(ctx)
	if err != nil {
		if store == nil || !errors.Is(err, context.Canceled) {
			return err
		}
		a.log.Warnf("%v, %d reports loaded", err, store.Len())
	}

	// Export to stdout replaces the human readable report
	if format != "" && a.opts.OutputFile == "" {
		return output.Write(a.stdout, store, format)
	}

	host := sysinfo.Collect(ctx)
	if a.opts.Verbose {
		fmt.Fprintf(a.stdout, "\n%s\n", white(host.String()))
	}

	if err := presenter.RenderTable(a.stdout, store); err != nil {
		return fmt.Errorf("failed to write results table: %w", err)
	}

	if a.opts.Charts {
		a.renderCharts(store, host)
	}

	if err := presenter.RenderErrorSummary(a.stdout, store); err != nil {
		return fmt.Errorf("failed to write error summary: %w", err)
	}

	if format != "" {
		if err := output.ExportStore(store, format, a.opts.OutputFile); err != nil {
			return fmt.Errorf("failed to export results: %w", err)
		}
		fmt.Fprintf(a.stdout, "\nResults exported to: %s\n", a.opts.OutputFile)
	}

	return nil
}

// load discovers and parses reports, showing progress on stderr
func (a *analyzer) load(ctx context.Context) (*models.Store, error) {
	cfg := loader.DefaultConfig()
	cfg.Workers = a.opts.Workers
	// A custom chart directory inside the results tree is not a proxy
	if dir := a.opts.ChartsDir; dir != "" && filepath.Dir(filepath.Clean(dir)) == filepath.Clean(a.opts.ResultsDir) {
		cfg.IgnoreDirs = append(cfg.IgnoreDirs, filepath.Base(dir))
	}

	var s *spinner.Spinner
	start := time.Now()

	onEvent := func(event loader.LoadEvent) {
		switch event.Type {
		case loader.EventScanStarting:
			if a.tty {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.stderr))
				s.Suffix = fmt.Sprintf(" Loading %d reports...", event.Total)
				s.Start()
			} else if a.opts.Verbose {
				fmt.Fprintf(a.stderr, "Loading %d reports from %s\n", event.Total, a.opts.ResultsDir)
			}

		case loader.EventFileParsed:
			if s != nil {
				s.Lock()
				s.Suffix = fmt.Sprintf(" [%d/%d] %s/%s", event.Index, event.Total, event.Proxy, event.Scenario)
				s.Unlock()
			}
			if a.opts.Verbose && !a.tty {
				fmt.Fprintf(a.stderr, "[%d/%d] %s %s/%s (%s)\n",
					event.Index, event.Total, green("✓"), event.Proxy, event.Scenario, event.Format)
			}

		case loader.EventFileSkipped:
			if a.opts.Verbose && !a.tty {
				fmt.Fprintf(a.stderr, "[%d/%d] %s %s: %v\n",
					event.Index, event.Total, red("✗"), event.Path, event.Err)
			}

		case loader.EventScanCompleted:
			if s != nil {
				s.Stop()
			}
			if a.opts.Verbose {
				fmt.Fprintf(a.stderr, "%s Processed %d reports in %v\n",
					cyan("→"), event.Index, time.Since(start).Round(time.Millisecond))
			}
		}
	}

	return loader.NewLoader(cfg, a.log).Load(ctx, a.opts.ResultsDir, onEvent)
}

func (a *analyzer) renderCharts(store *models.Store, host sysinfo.Info) {
	opts := charts.DefaultOptions(a.opts.ResultsDir)
	if a.opts.ChartsDir != "" {
		opts.Dir = a.opts.ChartsDir
	}
	opts.DPI = a.opts.ChartsDPI
	opts.Footer = host.String()
	opts.Now = a.now

	path, err := charts.Render(store, presenter.OrderScenarios(store.AllScenarios()), opts)
	switch {
	case errors.Is(err, charts.ErrUnavailable):
		fmt.Fprintf(a.stdout, "\n%s %v (rebuild without the nocharts tag)\n", yellow("Note:"), err)
	case err != nil:
		a.log.WithField("dir", opts.Dir).Warnf("chart generation failed: %v", err)
	default:
		fmt.Fprintf(a.stdout, "\n%s Chart saved: %s\n", green("✓"), path)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
