// Package static is the terminal strategy: a canned response that always
// succeeds, guaranteeing the resolution chain produces an answer.
package static

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

// Name identifies the strategy in traces and metrics.
const Name = "static"

// DefaultResponse is the canned answer of last resort.
const DefaultResponse = "I could not find a reliable answer to your question. " +
	"Please try rephrasing it or browse the recommended items."

// Strategy returns a fixed response at full confidence and never fails.
type Strategy struct {
	response string
}

// New creates the terminal strategy.
func New() *Strategy {
	return &Strategy{response: DefaultResponse}
}

// WithResponse overrides the canned response text.
func (s *Strategy) WithResponse(text string) *Strategy {
	if text != "" {
		s.response = text
	}
	return s
}

// Name implements resolution.Strategy.
func (s *Strategy) Name() string { return Name }

// Threshold implements resolution.Strategy.
func (s *Strategy) Threshold() float64 { return 0 }

// Execute implements resolution.Strategy.
func (s *Strategy) Execute(_ context.Context, _ resolution.Query) (answer.Answer, error) {
	return answer.New(s.response, 1.0, answer.SourceDefault, nil), nil
}
