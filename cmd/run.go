package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"precompress/internal/pipeline"
	"precompress/internal/tui"
	"precompress/pkg/compressor"
)

// pipelineFlags is the flag set shared by the run and scan commands.
type pipelineFlags struct {
	gzip       bool
	zopfli     bool
	brotli     bool
	zstd       bool
	overwrite  bool
	minSize    int64
	extensions []string
	minify     bool
	workers    int
	verbose    bool
}

func addPipelineFlags(cmd *cobra.Command, f *pipelineFlags) {
	defaults := pipeline.DefaultOptions()
	cmd.Flags().BoolVar(&f.gzip, "gzip", defaults.Gzip, "write .gz artifacts with plain gzip")
	cmd.Flags().BoolVar(&f.zopfli, "zopfli", defaults.Zopfli, "write .gz artifacts with zopfli (slower, smaller; replaces plain gzip)")
	cmd.Flags().BoolVar(&f.brotli, "brotli", defaults.Brotli, "write .br artifacts")
	cmd.Flags().BoolVar(&f.zstd, "zstd", defaults.Zstd, "write .zst artifacts")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "replace existing compressed artifacts")
	cmd.Flags().Int64Var(&f.minSize, "min-size", defaults.MinSize, "skip files smaller than this many bytes")
	cmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "extensions to compress (replaces the built-in set)")
	cmd.Flags().BoolVar(&f.minify, "minify", false, "minify HTML files in place before compressing")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "worker count (0 = number of CPUs)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log per-file decisions")
}

func (f *pipelineFlags) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Gzip = f.gzip
	opts.Zopfli = f.zopfli
	opts.Brotli = f.brotli
	opts.Zstd = f.zstd
	opts.Overwrite = f.overwrite
	opts.MinSize = f.minSize
	opts.Extensions = f.extensions
	opts.Minify = f.minify
	opts.Workers = f.workers
	return opts
}

func (f *pipelineFlags) logger() hclog.Logger {
	level := hclog.Warn
	if f.verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "precompress",
		Level:  level,
		Output: os.Stderr,
	})
}

var (
	runFlags pipelineFlags
	runJSON  bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <dir>",
	Short: "Compress eligible files under a build output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		logger := runFlags.logger()

		cfg, err := pipeline.Resolve(runFlags.options(), compressor.All(), logger)
		if err != nil {
			return err
		}

		var report pipeline.Report
		if runJSON {
			report, err = pipeline.Process(context.Background(), root, cfg, logger, nil)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			updates := make(chan pipeline.ProgressUpdate, 64)
			model := tui.NewModel(updates)
			program := tea.NewProgram(model)

			uiDone := make(chan struct{})
			go func() {
				_, _ = program.Run()
				close(uiDone)
			}()

			report, err = pipeline.Process(context.Background(), root, cfg, logger, updates)
			close(updates)
			<-uiDone
			if err != nil {
				return err
			}

			rows := []tui.SummaryRow{
				{Label: "Artifacts written", Value: fmt.Sprintf("%d", report.Written)},
				{Label: "Skipped (already exist)", Value: fmt.Sprintf("%d", report.SkippedExists)},
				{Label: "Skipped (too small)", Value: fmt.Sprintf("%d", report.SkippedTooSmall)},
				{Label: "Skipped (would grow)", Value: fmt.Sprintf("%d", report.SkippedLarger)},
				{Label: "Failed", Value: fmt.Sprintf("%d", report.Failed)},
				{Label: "Bytes saved", Value: fmt.Sprintf("%d", report.BytesSaved)},
			}
			if report.Written > 0 && report.OriginalBytes > 0 {
				ratio := float64(report.CompressedBytes) / float64(report.OriginalBytes) * 100
				rows = append(rows, tui.SummaryRow{Label: "Compressed size", Value: fmt.Sprintf("%.1f%% of original", ratio)})
			}
			fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		}

		if report.HasFailures() {
			return fmt.Errorf("%d artifacts failed", report.Failed)
		}
		return nil
	},
}

func init() {
	addPipelineFlags(runCmd, &runFlags)
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the report as JSON instead of the progress UI")

	rootCmd.AddCommand(runCmd)
}
