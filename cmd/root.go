package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfeditor/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfeditor",
	Short: "Slice, reorder and edit scanned PDF booklets",
	Long: `pdfeditor turns scanned two-up booklet spreads into single pages in
reading order. It runs as a web application with a live page viewer, and
the same operations are available from the command line.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
