package question

// Engine runs all registered rules against one analysis run's inputs
// and collects the resulting questions.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with all built-in rules registered.
// Safety rules run first so equal-priority questions keep safety items
// at the front after the stable sort.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			LowRangeSafety,
			DawnQuestion,
			MealSpikeQuestion,
			ActivityQuestion,
			InsulinDriftQuestion,
			HighVariabilityQuestion,
			SparseDataQuestion,
			TimeInRangeFallback,
		},
	}
}

// Generate executes all rules, ranks the questions HIGH→MEDIUM→LOW
// (stable within a tier), and truncates to maxCount. maxCount <= 0
// means no limit.
func (e *Engine) Generate(in *Inputs, maxCount int) []Question {
	var all []Question
	for _, rule := range e.rules {
		all = append(all, rule(in)...)
	}

	ranked := Rank(all)
	if maxCount > 0 && len(ranked) > maxCount {
		ranked = ranked[:maxCount]
	}
	return ranked
}
