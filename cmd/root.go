package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "precompress",
	Short: "precompress - pre-compress static site output for direct serving",
	Long: "precompress walks a build output tree once and writes gzip, zopfli, brotli,\n" +
		"and zstd siblings next to eligible text files, so the web server can serve\n" +
		"pre-built compressed bytes instead of compressing on every request.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
