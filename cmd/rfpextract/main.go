// Package main implements rfpextract, the command-line front end of the RFP extraction pipeline.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the optional YAML config file
	configPath string
	// logLevel overrides log.level when set
	logLevel string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rfpextract",
	Short: "Extract structured records from RFP documents",
	Long: `rfpextract turns already-converted RFP text (.txt, .md, or a parsed-document .json)
into structured extraction records: client and project identity, scope of work,
evaluation criteria, deliverables, dates, submission requirements, red flags and
confidence scores.

Configuration is read from --config (YAML) and RFP_* environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn, error")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(watchCmd)
}
