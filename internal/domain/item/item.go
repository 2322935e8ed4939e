package item

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/category"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Item field limits.
const (
	MaxIDLength    = 256
	MaxTitleLength = 512
)

// Item is a recommendable catalog entry (immutable value object).
type Item struct {
	id          string
	title       string
	description string
	cat         category.Category
	tags        []string
	vector      []float32
	updatedAt   time.Time
	confidence  float64
}

// New validates and creates an Item.
// ID: ^[a-zA-Z0-9_.-]+$, 1-256 chars. Empty category defaults to general.
// Tags are deduplicated preserving first occurrence. The vector may be empty
// at construction; the index checks dimensions on insert.
func New(
	id, title, description string,
	cat category.Category,
	tags []string, vector []float32,
	confidence float64,
) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("%w: item ID is required", domain.ErrValidation)
	}
	if len(id) > MaxIDLength {
		return Item{}, fmt.Errorf("%w: item ID too long (max %d)", domain.ErrValidation, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Item{}, fmt.Errorf("%w: item ID must be alphanumeric with dots, underscores and hyphens", domain.ErrValidation)
	}
	if title == "" {
		return Item{}, fmt.Errorf("%w: item title is required", domain.ErrValidation)
	}
	if len(title) > MaxTitleLength {
		return Item{}, fmt.Errorf("%w: item title too long (max %d)", domain.ErrValidation, MaxTitleLength)
	}
	if cat == "" {
		cat = category.General
	}
	if !cat.IsValid() {
		return Item{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, cat)
	}
	if confidence < 0 || confidence > 1 {
		return Item{}, fmt.Errorf("%w: confidence must be between 0 and 1", domain.ErrValidation)
	}

	return Item{
		id:          id,
		title:       title,
		description: description,
		cat:         cat,
		tags:        dedupeTags(tags),
		vector:      cloneVector(vector),
		updatedAt:   time.Now().UTC(),
		confidence:  confidence,
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(
	id, title, description string,
	cat category.Category,
	tags []string, vector []float32,
	updatedAt time.Time, confidence float64,
) Item {
	return Item{
		id: id, title: title, description: description, cat: cat,
		tags: tags, vector: vector, updatedAt: updatedAt, confidence: confidence,
	}
}

// ID returns the item identifier.
func (i Item) ID() string { return i.id }

// Title returns the item title.
func (i Item) Title() string { return i.title }

// Description returns the item description.
func (i Item) Description() string { return i.description }

// Category returns the topical category.
func (i Item) Category() category.Category { return i.cat }

// Tags returns the ordered tag set.
func (i Item) Tags() []string { return i.tags }

// Vector returns the embedding vector.
func (i Item) Vector() []float32 { return i.vector }

// UpdatedAt returns the last modification time.
func (i Item) UpdatedAt() time.Time { return i.updatedAt }

// Confidence returns the item-level quality score.
func (i Item) Confidence() float64 { return i.confidence }

// WithVector returns a copy with the given vector set and updatedAt refreshed.
func (i Item) WithVector(v []float32) Item {
	i.vector = v
	i.updatedAt = time.Now().UTC()
	return i
}

// WithTags returns a copy with the tag set replaced (deduplicated).
func (i Item) WithTags(tags []string) Item {
	i.tags = dedupeTags(tags)
	return i
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	c := make([]float32, len(v))
	copy(c, v)
	return c
}
