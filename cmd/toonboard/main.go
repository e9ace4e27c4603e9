package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	sourceURL  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "toonboard",
	Short: "Dashboards over the top animation movies and TV shows dataset",
	Long: `toonboard loads the animation titles CSV, cleans it and presents three
charts: genre distribution, minutes per title and rating versus votes.

Serve them in the browser with a genre filter and CSV download, print them
in the terminal, or browse them interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (defaults built in)")
	rootCmd.PersistentFlags().StringVar(&sourceURL, "source", "", "Dataset URL or local CSV path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, renderCmd, exportCmd, browseCmd, cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
