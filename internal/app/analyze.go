package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/glucowatch/internal/analysis"
	"github.com/blackwell-systems/glucowatch/internal/cache"
	"github.com/blackwell-systems/glucowatch/internal/config"
	"github.com/blackwell-systems/glucowatch/internal/output"
	"github.com/blackwell-systems/glucowatch/internal/question"
)

var (
	analyzeNoCache      bool
	analyzeMaxQuestions int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <archive>",
	Short: "Run the full pipeline on an export archive",
	Long: `Parse an export archive (.zip bundle, directory, or single tabular
file), compute glucose metrics, detect behavioral patterns, and generate
ranked follow-up questions. Results are cached by archive content
fingerprint, so re-analyzing an unchanged export is instant.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Skip the result cache")
	analyzeCmd.Flags().IntVar(&analyzeMaxQuestions, "max-questions", 0, "Override the question limit")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	result, hit, err := runPipeline(args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	renderAnalysis(result, hit)
	return nil
}

// runPipeline wires config, cache, and logger together and executes one
// analysis run under the configured timeout.
func runPipeline(archive string) (*analysis.Result, bool, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, false, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	}

	var store *cache.Store
	if !analyzeNoCache {
		store, err = cache.Open(cfg.DBPath())
		if err != nil {
			// The cache is best-effort; analysis proceeds without it.
			store = nil
		} else {
			defer func() { _ = store.Close() }()
		}
	}

	maxQuestions := cfg.MaxQuestions
	if analyzeMaxQuestions > 0 {
		maxQuestions = analyzeMaxQuestions
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AnalysisTimeout)
	defer cancel()

	pipeline := analysis.New(cache.New(store), newLogger(), maxQuestions)
	return pipeline.Run(ctx, archive)
}

func renderAnalysis(result *analysis.Result, cacheHit bool) {
	fmt.Println(output.Section("Analysis Window"))
	fmt.Println()
	fmt.Printf("  %s → %s (%d days)\n",
		result.Window.Start.Format("2006-01-02"),
		result.Window.End.Format("2006-01-02"),
		result.Window.Days())
	fmt.Printf("  %d readings, %d insulin events, %d carb events, %d activity events\n",
		result.ReadingCount, result.InsulinCount, result.CarbCount, result.ActivityCount)
	if cacheHit {
		fmt.Println(output.StyleMuted.Render("  (cached result)"))
	}

	renderMetrics(result)
	renderPatterns(result)
	renderQuestions(result.Questions)

	if len(result.Warnings) > 0 {
		fmt.Println(output.Section("Warnings"))
		fmt.Println()
		for _, w := range result.Warnings {
			fmt.Printf("  %s\n", output.StyleHigh.Render(w))
		}
	}
}

func renderMetrics(result *analysis.Result) {
	ms := result.Metrics

	fmt.Println(output.Section("Glucose Metrics"))
	fmt.Println()
	fmt.Printf("  %s\n\n", output.BandBar(ms, 40))

	tbl := output.NewTable("Metric", "Value")
	tbl.AddRow("Time in range (70-180)", fmt.Sprintf("%.1f%%", ms.TimeInRangePct))
	tbl.AddRow("Time below 70", fmt.Sprintf("%.1f%%", ms.TimeBelow70Pct))
	tbl.AddRow("Time below 54", fmt.Sprintf("%.1f%%", ms.TimeBelow54Pct))
	tbl.AddRow("Time above 180", fmt.Sprintf("%.1f%%", ms.TimeAbove180Pct))
	tbl.AddRow("Time above 250", fmt.Sprintf("%.1f%%", ms.TimeAbove250Pct))
	tbl.AddRow("Mean glucose", fmt.Sprintf("%.0f mg/dL", ms.Mean))
	tbl.AddRow("Std deviation", fmt.Sprintf("%.0f mg/dL", ms.StdDev))
	tbl.AddRow("Coefficient of variation", fmt.Sprintf("%.1f%%", ms.CoefficientOfVariation))
	tbl.AddRow("Estimated A1c (GMI)", fmt.Sprintf("%.1f%% (estimate, not a lab value)", ms.EstimatedA1C))
	tbl.Print()

	if ms.LowSample {
		fmt.Println(output.StyleHigh.Render(
			"  Low sample: fewer than 24 readings; treat these numbers with caution."))
	}
}

func renderPatterns(result *analysis.Result) {
	fmt.Println(output.Section("Detected Patterns"))
	fmt.Println()

	for _, p := range result.Patterns {
		if p.Detected {
			fmt.Printf("  %s %s (confidence %.2f, n=%d)\n",
				output.StyleInRange.Render("●"), output.StyleBold.Render(string(p.Type)),
				p.Confidence, p.SampleSize)
			fmt.Printf("    %s\n", p.Description)
		} else {
			fmt.Printf("  %s %s — not detected (%s)\n",
				output.StyleMuted.Render("○"), string(p.Type), p.Reason)
		}
	}
}

func renderQuestions(questions []question.Question) {
	fmt.Println(output.Section("Follow-up Questions"))
	fmt.Println()

	for i, q := range questions {
		fmt.Printf("  %d. %s %s\n", i+1, output.PriorityBadge(q.Priority), q.Text)
		fmt.Printf("     %s\n", output.StyleMuted.Render("→ "+string(q.TargetDomain)))
	}
}
