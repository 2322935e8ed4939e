package resolution

import (
	"fmt"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/result"
)

// Context carries shared out-of-band input for strategies: pre-fetched
// recommendation candidates and free-form request metadata.
type Context struct {
	Candidates []result.Scored
	Metadata   map[string]string
}

// Query is a validated answer-resolution request.
type Query struct {
	text string
	ctx  Context
}

// NewQuery validates and creates a resolution query.
func NewQuery(text string, ctx Context) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrValidation)
	}
	return Query{text: text, ctx: ctx}, nil
}

// Text returns the user question.
func (q *Query) Text() string { return q.text }

// Context returns the shared strategy input.
func (q *Query) Context() Context { return q.ctx }
