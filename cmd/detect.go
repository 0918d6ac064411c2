/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/moamenhredeen/proxybench/internal/loader"
	"github.com/moamenhredeen/proxybench/internal/models"
	"github.com/moamenhredeen/proxybench/internal/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect [report-file...]",
	Short: "Show which tool produced each report",
	Long: `Print the detected format of each report and how many fields could be
extracted from it. Without arguments every report under the results
directory is checked.

Examples:
  proxybench detect
  proxybench detect results/nginx/http.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		files := args
		if len(files) == 0 {
			dir := viper.GetString("results_dir")
			found, err := loader.NewLoader(loader.DefaultConfig(), logger).Discover(dir)
			if err != nil {
				fmt.Fprintln(os.Stderr, errorMessage(err, dir))
				os.Exit(1)
			}
			files = found
		}

		if failed := detectReports(os.Stdout, files); failed > 0 {
			os.Exit(1)
		}
	},
}

// detectReports prints one line per file and returns how many could not
// be read or recognized
func detectReports(w io.Writer, files []string) int {
	failed := 0
	for _, path := range files {
		report, err := parser.ReadReport(path)
		if err != nil {
			fmt.Fprintf(w, "%s %-50s %v\n", red("✗"), path, err)
			failed++
			continue
		}

		format := parser.Detect(report.Body)
		if format == models.FormatUnrecognized {
			fmt.Fprintf(w, "%s %-50s %s\n", red("✗"), path, format)
			failed++
			continue
		}

		ext := parser.Extract(report.Body, format)
		status := green("✓")
		if len(ext.Warnings) > 0 {
			status = yellow("●")
		}
		fmt.Fprintf(w, "%s %-50s %-12s %d fields, %d warnings\n",
			status, path, format, len(ext.Fields), len(ext.Warnings))
		if viper.GetBool("verbose") {
			for _, warn := range ext.Warnings {
				fmt.Fprintf(w, "    - %v\n", warn)
			}
		}
	}
	return failed
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
