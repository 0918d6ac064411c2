/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "proxybench",
	Short: "Compare reverse proxy load test results",
	Long: `proxybench reads the reports written by vegeta, wrk and hey for several
reverse proxies and protocol scenarios, normalizes them into one schema and
prints a side by side comparison.

Reports are expected under <results-dir>/<proxy>/<scenario>.json|txt.

Running proxybench without a sub-command is the same as "proxybench analyze".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(logger, viper.GetString("log_level"), os.Stderr)
	},
	Run: runAnalyze,
}

func Execute() {
	cobra.OnInitialize(initConfig)
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// initConfig reads config.toml and PROXYBENCH_* environment variables.
// A missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("PROXYBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// setupLogger configures the shared logger to write text to w at level
func setupLogger(l *logrus.Logger, level string, w io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("results_dir", "results")
	v.SetDefault("workers", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("charts.enabled", true)
	v.SetDefault("charts.dpi", 150)
	v.SetDefault("output.format", "")
	v.SetDefault("output.file", "")
	v.SetDefault("verbose", false)
}

func init() {
	setDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./config.toml)")
	flags.StringP("results-dir", "d", "results", "Directory holding <proxy>/<scenario> reports")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.IntP("workers", "w", 1, "Number of reports parsed concurrently")
	flags.Bool("no-charts", false, "Skip chart generation")
	flags.String("charts-dir", "", "Chart output directory (default: <results-dir>/charts)")
	flags.Int("dpi", 150, "Chart resolution")
	flags.StringP("output", "o", "", "Export format: json, csv, yaml")
	flags.String("output-file", "", "Write export to file (default: stdout)")
	flags.BoolP("verbose", "v", false, "Show detailed output")

	for key, flag := range map[string]string{
		"results_dir":   "results-dir",
		"log_level":     "log-level",
		"workers":       "workers",
		"charts.dir":    "charts-dir",
		"charts.dpi":    "dpi",
		"output.format": "output",
		"output.file":   "output-file",
		"verbose":       "verbose",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
