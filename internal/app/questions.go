package app

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions <archive>",
	Short: "Show ranked follow-up questions for an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, _, err := runPipeline(args[0])
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Questions)
		}

		renderQuestions(result.Questions)
		return nil
	},
}

func init() {
	questionsCmd.Flags().IntVar(&analyzeMaxQuestions, "max-questions", 0, "Override the question limit")
	rootCmd.AddCommand(questionsCmd)
}
