// Package llmgen resolves answers by generating them with a chat model.
package llmgen

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

// Name identifies the strategy in traces and metrics.
const Name = "generation"

// DefaultSystemPrompt steers the model toward short grounded answers.
const DefaultSystemPrompt = "You answer user questions concisely and accurately. " +
	"If you do not know the answer, say so instead of guessing."

// Confidence model: a clean stop finish and a substantive length raise the
// base estimate; an empty completion zeroes it.
const (
	baseConfidence = 0.55
	finishBonus    = 0.3
	lengthBonus    = 0.1
	maxConfidence  = 0.95
	minAnswerRunes = 40
)

// ChatClient produces a completion for a system/user prompt pair.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (domain.ChatResult, error)
}

// Strategy generates an answer with a chat model and estimates its
// confidence from the completion shape.
type Strategy struct {
	client    ChatClient
	threshold float64
	system    string
}

// New creates a generation strategy with the given acceptance threshold.
func New(client ChatClient, threshold float64) *Strategy {
	return &Strategy{client: client, threshold: threshold, system: DefaultSystemPrompt}
}

// WithSystemPrompt overrides the system prompt.
func (s *Strategy) WithSystemPrompt(prompt string) *Strategy {
	if prompt != "" {
		s.system = prompt
	}
	return s
}

// Name implements resolution.Strategy.
func (s *Strategy) Name() string { return Name }

// Threshold implements resolution.Strategy.
func (s *Strategy) Threshold() float64 { return s.threshold }

// Execute asks the model and scores the completion.
func (s *Strategy) Execute(ctx context.Context, q resolution.Query) (answer.Answer, error) {
	res, err := s.client.Complete(ctx, s.system, q.Text())
	if err != nil {
		return answer.Answer{}, fmt.Errorf("chat completion: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	text := strings.TrimSpace(res.Text)
	meta := map[string]string{"finish_reason": res.FinishReason}
	return answer.New(text, scoreCompletion(text, res.FinishReason), answer.SourceGeneration, meta), nil
}

func scoreCompletion(text, finishReason string) float64 {
	if text == "" {
		return 0
	}
	conf := baseConfidence
	if finishReason == "stop" {
		conf += finishBonus
	}
	if utf8.RuneCountInString(text) >= minAnswerRunes {
		conf += lengthBonus
	}
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf
}
