package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"precompress/internal/pipeline"
	"precompress/internal/tui"
	"precompress/pkg/compressor"
)

var scanFlags pipelineFlags

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <dir>",
	Short: "Report what a run would do without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		logger := scanFlags.logger()

		cfg, err := pipeline.Resolve(scanFlags.options(), compressor.All(), logger)
		if err != nil {
			return err
		}

		planned, err := pipeline.Scan(context.Background(), root, cfg, logger)
		if err != nil {
			return err
		}

		candidates := 0
		pending := 0
		for i, file := range planned {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "%s %s\n",
				scanFileStyle.Render(file.Rel),
				scanDimStyle.Render(fmt.Sprintf("(%d bytes)", file.Size)),
			)

			switch file.Status {
			case pipeline.StatusSkippedTooSmall:
				fmt.Fprintf(os.Stdout, "  %s %s\n",
					scanBulletStyle.Render("-"),
					scanDimStyle.Render("below minimum size, skipping"),
				)
				continue
			case pipeline.StatusFailed:
				fmt.Fprintf(os.Stdout, "  %s %s\n",
					scanBulletStyle.Render("-"),
					scanWarnStyle.Render("unreadable"),
				)
				continue
			}

			candidates++
			for _, action := range file.Actions {
				if action.Status == pipeline.StatusSkippedExists {
					fmt.Fprintf(os.Stdout, "  %s %s %s\n",
						scanBulletStyle.Render("-"),
						scanBackendStyle.Render(string(action.Backend)+":"),
						scanDimStyle.Render("target exists, would skip"),
					)
					continue
				}
				pending++
				fmt.Fprintf(os.Stdout, "  %s %s %s\n",
					scanBulletStyle.Render("-"),
					scanBackendStyle.Render(string(action.Backend)+":"),
					scanValueStyle.Render("would write "+action.Target),
				)
			}
		}

		fmt.Fprintf(os.Stdout, "\n%s\n",
			scanDimStyle.Render(fmt.Sprintf("%d candidate files, %d artifacts pending", candidates, pending)))
		return nil
	},
}

var (
	scanFileStyle    = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	scanBackendStyle = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	scanValueStyle   = lipgloss.NewStyle().Foreground(tui.ColorInk)
	scanWarnStyle    = lipgloss.NewStyle().Foreground(tui.ColorWarn)
	scanDimStyle     = lipgloss.NewStyle().Foreground(tui.ColorDim)
	scanBulletStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	addPipelineFlags(scanCmd, &scanFlags)
	rootCmd.AddCommand(scanCmd)
}
