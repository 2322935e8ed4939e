package tagging

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain/tag"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

const (
	// DefaultMaxTags caps the emitted tag set when callers pass no limit.
	DefaultMaxTags = 8

	// DefaultFuzzyThreshold is the Jaro-Winkler floor for the fuzzy stage.
	DefaultFuzzyThreshold = 0.90
)

// Stage labels for metrics, in priority order.
const (
	stageExact    = "exact"
	stageGlossary = "glossary"
	stageBucket   = "bucket"
	stageFuzzy    = "fuzzy"
	stageFallback = "fallback"
)

// Jaro-Winkler parameters: prefix boost above 0.7 similarity, up to 4 runes.
const (
	jaroBoost  = 0.7
	jaroPrefix = 4
)

// Extractor assigns topical tags to free text in four stages of decreasing
// precision: exact vocabulary scan, domain glossary scan, generic keyword
// buckets, fuzzy vocabulary lookup. Text that defeats every stage gets a
// length-bucket fallback tag, so the output is never empty and extraction
// never fails.
//
// Lowered copies of all dictionary terms are precomputed at construction;
// the extractor is safe for concurrent use.
type Extractor struct {
	dict           tag.Dictionary
	vocabLower     []string
	glossTermLower []string
	bucketKwLower  [][]string
	maxTags        int
	fuzzyThreshold float64
	log            *zap.Logger
}

// New builds an extractor over the dictionary.
func New(dict tag.Dictionary) *Extractor {
	e := &Extractor{
		dict:           dict,
		maxTags:        DefaultMaxTags,
		fuzzyThreshold: DefaultFuzzyThreshold,
		log:            zap.NewNop(),
	}

	e.vocabLower = lowerAll(dict.Vocabulary())

	gloss := dict.Glossary()
	e.glossTermLower = make([]string, len(gloss))
	for i, g := range gloss {
		e.glossTermLower[i] = strings.ToLower(g.Term())
	}

	buckets := dict.Buckets()
	e.bucketKwLower = make([][]string, len(buckets))
	for i, b := range buckets {
		e.bucketKwLower[i] = lowerAll(b.Keywords())
	}
	return e
}

// WithLogger attaches a logger.
func (e *Extractor) WithLogger(log *zap.Logger) *Extractor {
	if log != nil {
		e.log = log
	}
	return e
}

// WithMaxTags configures the default tag cap.
func (e *Extractor) WithMaxTags(n int) *Extractor {
	if n > 0 {
		e.maxTags = n
	}
	return e
}

// WithFuzzyThreshold configures the fuzzy stage similarity floor.
func (e *Extractor) WithFuzzyThreshold(th float64) *Extractor {
	if th > 0 && th <= 1 {
		e.fuzzyThreshold = th
	}
	return e
}

// Extract tags text. maxTags <= 0 falls back to the configured default.
//
// Stages 1 and 2 always run and accumulate; buckets run only when the
// glossaries found nothing; the fuzzy stage runs only when the set is
// still empty after that. Insertion order encodes stage priority then
// first-seen position, which makes truncation deterministic.
func (e *Extractor) Extract(text string, maxTags int) []string {
	if maxTags <= 0 {
		maxTags = e.maxTags
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		metrics.TaggingStageHitsTotal.WithLabelValues(stageFallback).Inc()
		return []string{tag.FallbackEmpty}
	}

	lower := strings.ToLower(trimmed)
	set := newOrderedSet()

	exact := e.matchVocabulary(lower)
	set.add(exact)
	countStage(stageExact, exact)

	glossary := e.matchGlossary(lower)
	set.add(glossary)
	countStage(stageGlossary, glossary)

	if len(glossary) == 0 {
		bucket := e.matchBuckets(lower)
		set.add(bucket)
		countStage(stageBucket, bucket)
	}

	if set.len() == 0 {
		fuzzy := e.matchFuzzy(lower)
		set.add(fuzzy)
		countStage(stageFuzzy, fuzzy)
	}

	if set.len() == 0 {
		metrics.TaggingStageHitsTotal.WithLabelValues(stageFallback).Inc()
		return []string{lengthFallback(trimmed)}
	}

	tags := set.take(maxTags)
	e.log.Debug("Tags extracted",
		zap.Int("count", len(tags)),
		zap.Int("text_runes", utf8.RuneCountInString(trimmed)),
	)
	return tags
}

// matchVocabulary scans for curated vocabulary terms by containment.
// Matches emit the canonical (original-case) vocabulary entry.
func (e *Extractor) matchVocabulary(lower string) []string {
	var out []string
	vocab := e.dict.Vocabulary()
	for i, lv := range e.vocabLower {
		if strings.Contains(lower, lv) {
			out = append(out, vocab[i])
		}
	}
	return out
}

// matchGlossary maps contained professional terms to their parent tags.
func (e *Extractor) matchGlossary(lower string) []string {
	var out []string
	gloss := e.dict.Glossary()
	for i, lt := range e.glossTermLower {
		if strings.Contains(lower, lt) {
			out = append(out, gloss[i].Tag())
		}
	}
	return out
}

// matchBuckets emits a bucket's tag when any of its keywords is contained.
func (e *Extractor) matchBuckets(lower string) []string {
	var out []string
	buckets := e.dict.Buckets()
	for i, kws := range e.bucketKwLower {
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				out = append(out, buckets[i].Tag())
				break
			}
		}
	}
	return out
}

// matchFuzzy maps each token to its nearest vocabulary entry when the
// Jaro-Winkler similarity clears the threshold. Ties keep the earlier
// vocabulary entry.
func (e *Extractor) matchFuzzy(lower string) []string {
	vocab := e.dict.Vocabulary()
	if len(vocab) == 0 {
		return nil
	}

	var out []string
	for _, tok := range tokenize(lower) {
		bestIdx, bestSim := -1, 0.0
		for i, lv := range e.vocabLower {
			if sim := smetrics.JaroWinkler(tok, lv, jaroBoost, jaroPrefix); sim > bestSim {
				bestIdx, bestSim = i, sim
			}
		}
		if bestIdx >= 0 && bestSim >= e.fuzzyThreshold {
			out = append(out, vocab[bestIdx])
		}
	}
	return out
}

// lengthFallback picks the generic tag by text length bucket.
func lengthFallback(text string) string {
	if utf8.RuneCountInString(text) < tag.ShortTextRunes {
		return tag.FallbackShort
	}
	return tag.FallbackLong
}

// tokenize splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func countStage(stage string, found []string) {
	if len(found) > 0 {
		metrics.TaggingStageHitsTotal.WithLabelValues(stage).Inc()
	}
}

// orderedSet keeps insertion order and drops empty, over-length, and
// repeated tags on add.
type orderedSet struct {
	seen map[string]bool
	tags []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(tags []string) {
	for _, tg := range tags {
		if tg == "" || utf8.RuneCountInString(tg) > tag.MaxTagRunes || s.seen[tg] {
			continue
		}
		s.seen[tg] = true
		s.tags = append(s.tags, tg)
	}
}

func (s *orderedSet) len() int { return len(s.tags) }

func (s *orderedSet) take(n int) []string {
	if len(s.tags) > n {
		return s.tags[:n]
	}
	return s.tags
}
