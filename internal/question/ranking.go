package question

import "sort"

// Rank sorts questions by priority tier, HIGH before MEDIUM before LOW.
// The sort is stable, so questions within a tier keep the order their
// rules produced them in.
func Rank(questions []Question) []Question {
	sorted := make([]Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}
