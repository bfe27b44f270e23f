// Package app contains the Cobra command tree for glucowatch.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with
// ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "glucowatch",
	Short: "Personal glucose data analysis from CGM exports",
	Long: `glucowatch ingests exported CGM, insulin, and carbohydrate records and
turns them into glucose metrics, detected behavioral patterns, and
prioritized follow-up questions. It does not diagnose conditions or
recommend dosing changes; detected patterns are correlational.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("glucowatch", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  analyze    Run the full pipeline on an export archive")
		fmt.Println("  metrics    Show glucose statistics for an archive")
		fmt.Println("  questions  Show ranked follow-up questions for an archive")
		fmt.Println("  cache      List or clear cached analysis results")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
}

// newLogger builds the pipeline logger: a development zap logger when
// --verbose is set, a no-op logger otherwise.
func newLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
