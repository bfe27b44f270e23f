package app

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <archive>",
	Short: "Show glucose statistics for an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, _, err := runPipeline(args[0])
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Metrics)
		}

		renderMetrics(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
