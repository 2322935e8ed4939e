package askdex

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return EmbeddingResult{Embedding: s.vec, TotalTokens: 4}, nil
}

type stubStrategy struct {
	name      string
	threshold float64
	answer    Answer
	err       error
	calls     int
}

func (s *stubStrategy) Name() string       { return s.name }
func (s *stubStrategy) Threshold() float64 { return s.threshold }

func (s *stubStrategy) Execute(_ context.Context, _ Query) (Answer, error) {
	s.calls++
	if s.err != nil {
		return Answer{}, s.err
	}
	return s.answer, nil
}

func seedItems() []Item {
	return []Item{
		{ID: "a", Title: "Index funds", Category: CategoryFinance, Tags: []string{"funds"}, Vector: []float32{1, 0, 0}},
		{ID: "b", Title: "Dividend stocks", Category: CategoryFinance, Tags: []string{"equities"}, Vector: []float32{0.9, 0.1, 0}},
		{ID: "c", Title: "Tenant rights", Category: CategoryLaw, Tags: []string{"housing"}, Vector: []float32{0, 1, 0}},
	}
}

func TestNew_Defaults(t *testing.T) {
	engine, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()

	health := engine.Health(context.Background())
	if health.Status != "ok" {
		t.Errorf("Status = %q, want ok", health.Status)
	}
	if health.Items != 0 {
		t.Errorf("Items = %d, want 0", health.Items)
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	_, err := New(WithDimensions(-1))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAddItems_And_Recommend(t *testing.T) {
	engine, err := New(WithDimensions(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()

	results, err := engine.AddItems(context.Background(), seedItems())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if !r.OK {
			t.Fatalf("item %s failed: %v", r.ID, r.Err)
		}
	}

	rec, err := engine.Recommend(context.Background(), RecommendQuery{
		Vector: []float32{1, 0, 0},
		TopK:   2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(rec.Items))
	}
	if rec.Items[0].ID != "a" || rec.Items[1].ID != "b" {
		t.Errorf("order = [%s %s], want [a b]", rec.Items[0].ID, rec.Items[1].ID)
	}
	if rec.Category != CategoryFinance {
		t.Errorf("Category = %q, want finance", rec.Category)
	}
	if rec.Confidence <= 0 || rec.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0,1]", rec.Confidence)
	}
}

func TestRecommend_CategoryFilter(t *testing.T) {
	engine, _ := New(WithDimensions(3))
	defer engine.Close()

	if _, err := engine.AddItems(context.Background(), seedItems()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := engine.Recommend(context.Background(), RecommendQuery{
		Vector:   []float32{1, 0, 0},
		Category: CategoryLaw,
		TopK:     5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Items) != 1 || rec.Items[0].ID != "c" {
		t.Fatalf("Items = %v, want only c", rec.Items)
	}
}

func TestRecommend_EmptyIndex(t *testing.T) {
	engine, _ := New(WithDimensions(3))
	defer engine.Close()

	rec, err := engine.Recommend(context.Background(), RecommendQuery{Vector: []float32{1, 0, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(rec.Items))
	}
	if rec.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", rec.Confidence)
	}
	if rec.Reasoning == "" {
		t.Error("Reasoning is empty")
	}
}

func TestRecommend_DimMismatch(t *testing.T) {
	engine, _ := New(WithDimensions(3))
	defer engine.Close()

	if _, err := engine.AddItems(context.Background(), seedItems()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := engine.Recommend(context.Background(), RecommendQuery{Vector: []float32{1, 0}})
	if !errors.Is(err, ErrVectorDimMismatch) {
		t.Errorf("error = %v, want ErrVectorDimMismatch", err)
	}
}

func TestRecommend_TextWithoutEmbedder(t *testing.T) {
	engine, _ := New(WithDimensions(3))
	defer engine.Close()

	_, err := engine.Recommend(context.Background(), RecommendQuery{Text: "funds"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestRecommend_TextQuery(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{1, 0, 0}}
	engine, _ := New(WithDimensions(3), WithEmbedder(emb))
	defer engine.Close()

	if _, err := engine.AddItems(context.Background(), seedItems()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := engine.Recommend(context.Background(), RecommendQuery{Text: "index funds", TopK: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", emb.calls)
	}
	if len(rec.Items) != 1 || rec.Items[0].ID != "a" {
		t.Fatalf("Items = %v, want [a]", rec.Items)
	}
}

func TestAddItems_InvalidItemFailsCall(t *testing.T) {
	engine, _ := New(WithDimensions(3))
	defer engine.Close()

	_, err := engine.AddItems(context.Background(), []Item{
		{ID: "ok", Title: "Fine", Category: CategoryFinance, Vector: []float32{1, 0, 0}},
		{ID: "bad", Category: CategoryFinance, Vector: []float32{1, 0, 0}}, // no title
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	health := engine.Health(context.Background())
	if health.Items != 0 {
		t.Errorf("Items = %d, want 0 after rejected call", health.Items)
	}
}

func TestAddItems_EmbedsAndTagsAutomatically(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 0, 1}}
	engine, _ := New(WithDimensions(3), WithEmbedder(emb))
	defer engine.Close()

	results, err := engine.AddItems(context.Background(), []Item{
		{ID: "vectorless", Title: "Plain item", Description: "no vector, no tags", Category: CategoryGeneral},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[0].OK {
		t.Fatalf("item failed: %v", results[0].Err)
	}
	if emb.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", emb.calls)
	}

	rec, err := engine.Recommend(context.Background(), RecommendQuery{Vector: []float32{0, 0, 1}, TopK: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Items) != 1 || rec.Items[0].ID != "vectorless" {
		t.Fatalf("Items = %v, want [vectorless]", rec.Items)
	}
	if len(rec.Items[0].Tags) == 0 {
		t.Error("expected auto-extracted tags")
	}
}

func TestAddItems_VectorlessWithoutEmbedder(t *testing.T) {
	engine, _ := New(WithDimensions(3))
	defer engine.Close()

	results, err := engine.AddItems(context.Background(), []Item{
		{ID: "x", Title: "No vector", Category: CategoryGeneral},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].OK {
		t.Fatal("expected per-item failure")
	}
	if !errors.Is(results[0].Err, ErrValidation) {
		t.Errorf("Err = %v, want ErrValidation", results[0].Err)
	}
}

func TestExtractTags_CustomDictionary(t *testing.T) {
	engine, err := New(WithDictionary(Dictionary{
		Category:   CategoryFinance,
		Vocabulary: []string{"mortgage refinancing"},
		Glossary:   []GlossaryEntry{{Term: "401k", Tag: "retirement-planning"}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer engine.Close()

	tags := engine.ExtractTags("Should I roll my 401k into mortgage refinancing?", 5)
	if len(tags) == 0 {
		t.Fatal("no tags extracted")
	}
	found := map[string]bool{}
	for _, tg := range tags {
		found[tg] = true
	}
	if !found["mortgage refinancing"] {
		t.Errorf("tags = %v, want vocabulary match", tags)
	}
	if !found["retirement-planning"] {
		t.Errorf("tags = %v, want glossary match", tags)
	}
}

func TestExtractTags_NeverEmpty(t *testing.T) {
	engine, _ := New()
	defer engine.Close()

	if tags := engine.ExtractTags("", 5); len(tags) == 0 {
		t.Error("empty text produced no tags")
	}
	if tags := engine.ExtractTags("zzz qqq xxx unrelated gibberish", 5); len(tags) == 0 {
		t.Error("unmatched text produced no tags")
	}
}

func TestNew_InvalidDictionary(t *testing.T) {
	_, err := New(WithDictionary(Dictionary{
		Glossary: []GlossaryEntry{{Term: "", Tag: "x"}},
	}))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestResolve_TerminalAnswer(t *testing.T) {
	engine, _ := New()
	defer engine.Close()

	res, err := engine.Resolve(context.Background(), Query{Text: "anything at all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "static" {
		t.Errorf("Strategy = %q, want static", res.Strategy)
	}
	if res.Answer.Source != "default" {
		t.Errorf("Source = %q, want default", res.Answer.Source)
	}
	if res.Answer.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", res.Answer.Confidence)
	}
	if len(res.Trace) != 1 || !res.Trace[0].Accepted {
		t.Errorf("Trace = %+v, want single accepted attempt", res.Trace)
	}
	if res.ID == "" {
		t.Error("ID is empty")
	}
}

func TestResolve_CustomStrategyWins(t *testing.T) {
	strat := &stubStrategy{
		name:      "canned-faq",
		threshold: 0.5,
		answer:    Answer{Text: "From the FAQ.", Confidence: 0.9, Source: "faq"},
	}
	engine, _ := New(WithStrategies(strat))
	defer engine.Close()

	res, err := engine.Resolve(context.Background(), Query{Text: "known question"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "canned-faq" {
		t.Errorf("Strategy = %q, want canned-faq", res.Strategy)
	}
	if res.Answer.Text != "From the FAQ." {
		t.Errorf("Text = %q", res.Answer.Text)
	}
	if len(res.Trace) != 1 {
		t.Errorf("len(Trace) = %d, want 1 (terminal not reached)", len(res.Trace))
	}
	if strat.calls != 1 {
		t.Errorf("calls = %d, want 1", strat.calls)
	}
}

func TestResolve_FailingStrategyAbsorbed(t *testing.T) {
	strat := &stubStrategy{
		name:      "flaky",
		threshold: 0.5,
		err:       errors.New("upstream down"),
	}
	engine, _ := New(WithStrategies(strat))
	defer engine.Close()

	res, err := engine.Resolve(context.Background(), Query{Text: "still answered"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "static" {
		t.Errorf("Strategy = %q, want static", res.Strategy)
	}
	if len(res.Trace) != 2 {
		t.Fatalf("len(Trace) = %d, want 2", len(res.Trace))
	}
	if res.Trace[0].Err == "" || res.Trace[0].Accepted {
		t.Errorf("Trace[0] = %+v, want failed attempt", res.Trace[0])
	}
}

func TestResolve_BelowThresholdFallsThrough(t *testing.T) {
	strat := &stubStrategy{
		name:      "timid",
		threshold: 0.8,
		answer:    Answer{Text: "maybe", Confidence: 0.4, Source: "faq"},
	}
	engine, _ := New(WithStrategies(strat))
	defer engine.Close()

	res, err := engine.Resolve(context.Background(), Query{Text: "question"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != "static" {
		t.Errorf("Strategy = %q, want static", res.Strategy)
	}
	if res.Trace[0].Accepted {
		t.Error("Trace[0] accepted, want rejected")
	}
}

func TestResolve_EmptyQuestion(t *testing.T) {
	engine, _ := New()
	defer engine.Close()

	if _, err := engine.Resolve(context.Background(), Query{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestResolve_DefaultAnswerOverride(t *testing.T) {
	engine, _ := New(WithDefaultAnswer("Ask our support desk."))
	defer engine.Close()

	res, err := engine.Resolve(context.Background(), Query{Text: "question"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer.Text != "Ask our support desk." {
		t.Errorf("Text = %q", res.Answer.Text)
	}
}

func TestUsage_UnlimitedMode(t *testing.T) {
	engine, _ := New()
	defer engine.Close()

	report := engine.Usage(context.Background(), PeriodTotal)
	if report.Period != PeriodTotal {
		t.Errorf("Period = %q, want total", report.Period)
	}
	if report.Metrics.Tokens != 0 {
		t.Errorf("Tokens = %d, want 0", report.Metrics.Tokens)
	}
	if report.Budget.IsExhausted {
		t.Error("IsExhausted = true in unlimited mode")
	}
}

func TestWithPrometheus_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Close()

	// Повторная регистрация на том же registerer переиспользует коллекторы.
	second, err := New(WithPrometheus(reg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second.Close()
}
