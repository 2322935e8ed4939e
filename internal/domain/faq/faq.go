package faq

import (
	"fmt"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// Entry is one curated question/answer pair.
type Entry struct {
	question string
	answer   string
}

// New validates and creates an FAQ entry.
func New(question, answer string) (Entry, error) {
	if question == "" {
		return Entry{}, fmt.Errorf("%w: FAQ question is required", domain.ErrValidation)
	}
	if answer == "" {
		return Entry{}, fmt.Errorf("%w: FAQ answer is required", domain.ErrValidation)
	}
	return Entry{question: question, answer: answer}, nil
}

// Reconstruct creates an entry without validation (storage hydration).
func Reconstruct(question, answer string) Entry {
	return Entry{question: question, answer: answer}
}

// Question returns the curated question text.
func (e Entry) Question() string { return e.question }

// Answer returns the curated answer text.
func (e Entry) Answer() string { return e.answer }
