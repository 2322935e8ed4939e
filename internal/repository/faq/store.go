// Package faq persists question/answer pairs for the FAQ matching strategy.
package faq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/askdex/internal/db"
	"github.com/kailas-cloud/askdex/internal/domain"
	domfaq "github.com/kailas-cloud/askdex/internal/domain/faq"
)

var keyPrefix = domain.KeyPrefix + "faq:"

// store is the consumer interface for FAQ persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// entryDTO is the stored JSON shape.
type entryDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Redis implements the FAQ store on the KV facade. Keys derive from the
// normalized question, so re-seeding the same entry overwrites in place.
type Redis struct {
	store store
}

// NewRedis creates a KV-backed FAQ store.
func NewRedis(s store) *Redis {
	return &Redis{store: s}
}

// Put stores an entry, replacing any previous answer for the same question.
func (r *Redis) Put(ctx context.Context, e domfaq.Entry) error {
	data, err := json.Marshal(entryDTO{Question: e.Question(), Answer: e.Answer()})
	if err != nil {
		return fmt.Errorf("marshal FAQ entry: %w", err)
	}
	key := entryKey(e.Question())
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for a question. Missing entries are not an error.
func (r *Redis) Delete(ctx context.Context, question string) error {
	key := entryKey(question)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// List returns all stored entries in stable key order.
func (r *Redis) List(ctx context.Context) ([]domfaq.Entry, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan FAQ keys: %w", err)
	}
	sort.Strings(keys)

	entries := make([]domfaq.Entry, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			// Expired between SCAN and GET.
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		var dto entryDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", key, err)
		}
		entries = append(entries, domfaq.Reconstruct(dto.Question, dto.Answer))
	}
	return entries, nil
}

// entryKey builds a deterministic key from the normalized question.
func entryKey(question string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return keyPrefix + hex.EncodeToString(h[:])
}
