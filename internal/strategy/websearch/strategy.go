// Package websearch resolves answers from external web search snippets.
package websearch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

// Name identifies the strategy in traces and metrics.
const Name = "web_search"

// DefaultLimit caps how many results are requested per query.
const DefaultLimit = 5

// Confidence model: search snippets are weak evidence, so confidence grows
// with result count but never reaches the generation ceiling.
const (
	baseConfidence = 0.3
	perResult      = 0.15
	maxConfidence  = 0.75
)

// Strategy answers with joined search snippets.
type Strategy struct {
	client    domain.WebSearcher
	threshold float64
	limit     int
}

// New creates a web search strategy with the given acceptance threshold.
func New(client domain.WebSearcher, threshold float64) *Strategy {
	return &Strategy{client: client, threshold: threshold, limit: DefaultLimit}
}

// WithLimit configures how many results are requested.
func (s *Strategy) WithLimit(limit int) *Strategy {
	if limit > 0 {
		s.limit = limit
	}
	return s
}

// Name implements resolution.Strategy.
func (s *Strategy) Name() string { return Name }

// Threshold implements resolution.Strategy.
func (s *Strategy) Threshold() float64 { return s.threshold }

// Execute searches the web and joins the snippets into one answer. No
// results yields a zero-confidence answer, not an error.
func (s *Strategy) Execute(ctx context.Context, q resolution.Query) (answer.Answer, error) {
	results, err := s.client.Search(ctx, q.Text(), s.limit)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("web search: %w", err)
	}
	if len(results) == 0 {
		return answer.New("", 0, answer.SourceWebSearch, nil), nil
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		line := r.Title
		if r.Snippet != "" {
			line += ": " + r.Snippet
		}
		if r.URL != "" {
			line += " (" + r.URL + ")"
		}
		lines = append(lines, line)
	}

	conf := baseConfidence + perResult*float64(len(results))
	if conf > maxConfidence {
		conf = maxConfidence
	}

	meta := map[string]string{"results": strconv.Itoa(len(results))}
	return answer.New(strings.Join(lines, "\n"), conf, answer.SourceWebSearch, meta), nil
}
