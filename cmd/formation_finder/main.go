// Package main provides the entry point for the Formation Finder CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "formation_finder",
	Short: "Formation Finder HTTP API Server and CLI",
	Long: `Formation Finder helps job-seekers of the agricultural-trade sector find professional
training programs near a city, for a chosen occupation and diploma level. Results come from a
static reference dataset, enriched from web search when the dataset answer is thin.

Configuration is read from the environment (a .env file is loaded when present) and optionally
from a JSON file given with --config; environment values win.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
