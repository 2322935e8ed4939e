package tag

import (
	"fmt"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/category"
)

// MaxTagRunes is the longest tag the extractor will emit.
const MaxTagRunes = 64

// Guaranteed fallback tags, bucketed by input length.
const (
	FallbackEmpty = "general"
	FallbackShort = "general-short"
	FallbackLong  = "general-long"
	// ShortTextRunes separates the short and long fallback buckets.
	ShortTextRunes = 20
)

// GlossaryEntry maps a professional term to its parent topical tag.
type GlossaryEntry struct {
	term string
	tag  string
	cat  category.Category
}

// NewGlossaryEntry creates a glossary entry.
func NewGlossaryEntry(term, tagName string, cat category.Category) (GlossaryEntry, error) {
	if term == "" || tagName == "" {
		return GlossaryEntry{}, fmt.Errorf("%w: glossary entry needs term and tag", domain.ErrValidation)
	}
	if cat != "" && !cat.IsValid() {
		return GlossaryEntry{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, cat)
	}
	return GlossaryEntry{term: term, tag: tagName, cat: cat}, nil
}

// Term returns the professional term matched by substring containment.
func (g GlossaryEntry) Term() string { return g.term }

// Tag returns the parent topical tag emitted on a match.
func (g GlossaryEntry) Tag() string { return g.tag }

// Category returns the glossary domain the entry came from.
func (g GlossaryEntry) Category() category.Category { return g.cat }

// Bucket maps common keywords to one broad topical tag. Buckets are the
// lower-precision signal consulted when the glossaries find nothing.
type Bucket struct {
	tag      string
	keywords []string
}

// NewBucket creates a keyword bucket.
func NewBucket(tagName string, keywords []string) (Bucket, error) {
	if tagName == "" {
		return Bucket{}, fmt.Errorf("%w: bucket needs a tag", domain.ErrValidation)
	}
	if len(keywords) == 0 {
		return Bucket{}, fmt.Errorf("%w: bucket %q needs keywords", domain.ErrValidation, tagName)
	}
	kw := make([]string, len(keywords))
	copy(kw, keywords)
	return Bucket{tag: tagName, keywords: kw}, nil
}

// Tag returns the bucket's topical tag.
func (b Bucket) Tag() string { return b.tag }

// Keywords returns the keywords that trigger the bucket.
func (b Bucket) Keywords() []string { return b.keywords }

// Dictionary is the immutable tag knowledge bundle: the curated vocabulary,
// the per-domain glossaries, and the generic keyword buckets. Safe for
// concurrent readers; built once at startup.
type Dictionary struct {
	vocabulary []string
	glossary   []GlossaryEntry
	buckets    []Bucket
}

// NewDictionary assembles a dictionary. Vocabulary order is preserved and
// duplicates are dropped first-seen; it becomes the tie-break order for
// exact and fuzzy matching.
func NewDictionary(vocabulary []string, glossary []GlossaryEntry, buckets []Bucket) Dictionary {
	seen := make(map[string]bool, len(vocabulary))
	vocab := make([]string, 0, len(vocabulary))
	for _, v := range vocabulary {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		vocab = append(vocab, v)
	}
	gl := make([]GlossaryEntry, len(glossary))
	copy(gl, glossary)
	bk := make([]Bucket, len(buckets))
	copy(bk, buckets)
	return Dictionary{vocabulary: vocab, glossary: gl, buckets: bk}
}

// Merge returns a dictionary combining the receiver with another; other's
// entries append after the receiver's, keeping load order deterministic.
func (d Dictionary) Merge(other Dictionary) Dictionary {
	return NewDictionary(
		append(append([]string{}, d.vocabulary...), other.vocabulary...),
		append(append([]GlossaryEntry{}, d.glossary...), other.glossary...),
		append(append([]Bucket{}, d.buckets...), other.buckets...),
	)
}

// Vocabulary returns the curated tag vocabulary in canonical order.
func (d Dictionary) Vocabulary() []string { return d.vocabulary }

// Glossary returns all glossary entries in load order.
func (d Dictionary) Glossary() []GlossaryEntry { return d.glossary }

// Buckets returns the generic keyword buckets in load order.
func (d Dictionary) Buckets() []Bucket { return d.buckets }

// IsEmpty reports whether the dictionary carries no signal at all.
func (d Dictionary) IsEmpty() bool {
	return len(d.vocabulary) == 0 && len(d.glossary) == 0 && len(d.buckets) == 0
}
