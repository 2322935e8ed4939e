// Package faq resolves answers by fuzzy-matching curated FAQ entries.
package faq

import (
	"context"
	"fmt"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/kailas-cloud/askdex/internal/domain/answer"
	domfaq "github.com/kailas-cloud/askdex/internal/domain/faq"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

// Name identifies the strategy in traces and metrics.
const Name = "faq"

// Jaro-Winkler parameters: prefix boost above 0.7 similarity, up to 4 runes.
const (
	jaroBoost  = 0.7
	jaroPrefix = 4
)

// Store lists the curated FAQ entries.
type Store interface {
	List(ctx context.Context) ([]domfaq.Entry, error)
}

// Strategy matches the query against stored questions; confidence is the
// best Jaro-Winkler similarity, so the threshold doubles as the match bar.
type Strategy struct {
	store     Store
	threshold float64
}

// New creates an FAQ strategy with the given acceptance threshold.
func New(store Store, threshold float64) *Strategy {
	return &Strategy{store: store, threshold: threshold}
}

// Name implements resolution.Strategy.
func (s *Strategy) Name() string { return Name }

// Threshold implements resolution.Strategy.
func (s *Strategy) Threshold() float64 { return s.threshold }

// Execute returns the answer of the closest stored question. An empty
// store yields a zero-confidence answer, not an error.
func (s *Strategy) Execute(ctx context.Context, q resolution.Query) (answer.Answer, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("list FAQ entries: %w", err)
	}
	if len(entries) == 0 {
		return answer.New("", 0, answer.SourceFAQ, nil), nil
	}

	query := normalize(q.Text())
	bestIdx, bestSim := 0, -1.0
	for i, e := range entries {
		if sim := smetrics.JaroWinkler(query, normalize(e.Question()), jaroBoost, jaroPrefix); sim > bestSim {
			bestIdx, bestSim = i, sim
		}
	}

	best := entries[bestIdx]
	meta := map[string]string{"matched_question": best.Question()}
	return answer.New(best.Answer(), bestSim, answer.SourceFAQ, meta), nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
