package question

import (
	"testing"

	"github.com/blackwell-systems/glucowatch/internal/metrics"
	"github.com/blackwell-systems/glucowatch/internal/pattern"
)

func TestRank_TierOrderIsStable(t *testing.T) {
	qs := []Question{
		{Text: "low-1", Priority: PriorityLow},
		{Text: "med-1", Priority: PriorityMedium},
		{Text: "high-1", Priority: PriorityHigh},
		{Text: "low-2", Priority: PriorityLow},
		{Text: "high-2", Priority: PriorityHigh},
	}

	ranked := Rank(qs)
	wantOrder := []string{"high-1", "high-2", "med-1", "low-1", "low-2"}
	for i, want := range wantOrder {
		if ranked[i].Text != want {
			t.Fatalf("position %d: got %q, want %q (full order %v)", i, ranked[i].Text, want, texts(ranked))
		}
	}
	// Input order untouched.
	if qs[0].Text != "low-1" {
		t.Error("Rank must not mutate its input")
	}
}

func TestGenerate_SafetyLeadsTheList(t *testing.T) {
	in := &Inputs{
		Metrics: metrics.MetricSet{
			ReadingCount:   288,
			TimeBelow70Pct: 7.0,
			TimeInRangePct: 60,
		},
		Patterns: []pattern.Result{
			detected(pattern.DawnPhenomenon, 0.9, 9.0, 10),
		},
	}

	qs := NewEngine().Generate(in, 0)
	if len(qs) < 3 {
		t.Fatalf("expected safety + dawn + fallback, got %d questions", len(qs))
	}
	if qs[0].Priority != PriorityHigh || qs[0].TargetDomain != DomainBehavioral {
		t.Errorf("first question should be the HIGH safety item, got %+v", qs[0])
	}
	// Both HIGH items exist; the safety rule registered first, so the
	// stable sort keeps it ahead of the equally HIGH dawn question.
	if qs[0].PatternType != "" {
		t.Errorf("safety question carries no pattern type, got %q", qs[0].PatternType)
	}
	if qs[1].PatternType != pattern.DawnPhenomenon {
		t.Errorf("second question should be the dawn follow-up, got %+v", qs[1])
	}
}

func TestGenerate_TruncatesToMaxCount(t *testing.T) {
	in := &Inputs{
		Metrics: metrics.MetricSet{
			ReadingCount:           288,
			TimeBelow70Pct:         7.0,
			TimeInRangePct:         55,
			CoefficientOfVariation: 42,
		},
		Patterns: []pattern.Result{
			detected(pattern.DawnPhenomenon, 0.9, 9.0, 10),
			detected(pattern.PostMealSpike, 0.8, 0, 12),
		},
	}

	all := NewEngine().Generate(in, 0)
	if len(all) < 4 {
		t.Fatalf("fixture should yield at least 4 questions, got %d", len(all))
	}

	limited := NewEngine().Generate(in, 2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 questions after truncation, got %d", len(limited))
	}
	// Truncation happens after ranking, so the survivors are the
	// highest-priority items.
	for _, q := range limited {
		if q.Priority != PriorityHigh {
			t.Errorf("truncated list kept a %s question: %q", q.Priority, q.Text)
		}
	}
}

func TestGenerate_NeverEmptyWithData(t *testing.T) {
	in := &Inputs{
		Metrics: metrics.MetricSet{
			ReadingCount:   288,
			TimeInRangePct: 95,
		},
	}
	qs := NewEngine().Generate(in, 10)
	if len(qs) == 0 {
		t.Fatal("any run with readings must produce at least the fallback question")
	}
}

func TestGenerate_EmptyMetricsYieldNothing(t *testing.T) {
	qs := NewEngine().Generate(&Inputs{}, 10)
	if len(qs) != 0 {
		t.Errorf("no readings should yield no questions, got %d", len(qs))
	}
}

func texts(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Text
	}
	return out
}
