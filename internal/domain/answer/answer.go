package answer

// Source identifies which kind of strategy produced an answer.
type Source string

// Answer sources.
const (
	SourceGeneration Source = "generation"
	SourceFAQ        Source = "faq"
	SourceWebSearch  Source = "web_search"
	// SourceDefault marks the terminal canned answer.
	SourceDefault Source = "default"
	// SourceRecommendation marks answers assembled from catalog items.
	SourceRecommendation Source = "recommendation"
)

// IsValid checks if the source is one of the known values.
func (s Source) IsValid() bool {
	switch s {
	case SourceGeneration, SourceFAQ, SourceWebSearch, SourceDefault, SourceRecommendation:
		return true
	}
	return false
}

// Answer is one candidate answer produced by a single strategy execution
// (ephemeral value object).
type Answer struct {
	text       string
	confidence float64
	source     Source
	metadata   map[string]string
}

// New creates a candidate answer. Confidence is clamped to [0,1]; an
// unknown source is recorded as-is and surfaces in the trace.
func New(text string, confidence float64, source Source, metadata map[string]string) Answer {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Answer{
		text:       text,
		confidence: confidence,
		source:     source,
		metadata:   cloneMetadata(metadata),
	}
}

// Text returns the answer text.
func (a Answer) Text() string { return a.text }

// Confidence returns the strategy's self-assessed confidence.
func (a Answer) Confidence() float64 { return a.confidence }

// Source returns the producing strategy kind.
func (a Answer) Source() Source { return a.source }

// Metadata returns provider-specific annotations.
func (a Answer) Metadata() map[string]string { return a.metadata }

// IsZero reports whether the answer is the zero value (no strategy output).
func (a Answer) IsZero() bool {
	return a.text == "" && a.source == "" && a.confidence == 0 && a.metadata == nil
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
