package items

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/askdex/internal/domain"
	dombatch "github.com/kailas-cloud/askdex/internal/domain/batch"
	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/item"
)

// --- Mocks ---

type mockIndexer struct {
	added   []item.Item
	failFor map[string]error
}

func (m *mockIndexer) Add(items ...item.Item) error {
	for _, it := range items {
		if err, ok := m.failFor[it.ID()]; ok {
			return err
		}
		m.added = append(m.added, it)
	}
	return nil
}

func (m *mockIndexer) Len() int { return len(m.added) }

type mockEmbedder struct {
	res   domain.EmbeddingResult
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.res, nil
}

type mockTagger struct {
	tags     []string
	lastText string
	calls    int
}

func (m *mockTagger) Extract(text string, _ int) []string {
	m.calls++
	m.lastText = text
	return m.tags
}

// --- Helpers ---

func mustItem(t *testing.T, id string, tags []string, vector []float32) item.Item {
	t.Helper()
	it, err := item.New(id, "Title "+id, "Description of "+id, category.General, tags, vector, 1)
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

func assertOK(t *testing.T, r dombatch.Result) {
	t.Helper()
	if r.Status() != dombatch.StatusOK {
		t.Errorf("item %s: expected ok, got %s (%v)", r.ID(), r.Status(), r.Err())
	}
}

func assertError(t *testing.T, r dombatch.Result, contains string) {
	t.Helper()
	if r.Status() != dombatch.StatusError {
		t.Fatalf("item %s: expected error, got %s", r.ID(), r.Status())
	}
	if !strings.Contains(r.Err().Error(), contains) {
		t.Errorf("item %s: error %q does not contain %q", r.ID(), r.Err(), contains)
	}
}

// --- Tests ---

func TestAdd_AllOK(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(idx)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", []string{"x"}, []float32{1, 0}),
		mustItem(t, "b", []string{"y"}, []float32{0, 1}),
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	assertOK(t, results[0])
	assertOK(t, results[1])
	if len(idx.added) != 2 {
		t.Errorf("expected 2 items in index, got %d", len(idx.added))
	}
}

func TestAdd_TagsUntaggedItems(t *testing.T) {
	idx := &mockIndexer{}
	tagger := &mockTagger{tags: []string{"auto"}}
	svc := New(idx).WithTagger(tagger)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", nil, []float32{1, 0}),
	})

	assertOK(t, results[0])
	if tagger.lastText != "Title a. Description of a" {
		t.Errorf("tagger text = %q", tagger.lastText)
	}
	if len(idx.added) != 1 || len(idx.added[0].Tags()) != 1 || idx.added[0].Tags()[0] != "auto" {
		t.Errorf("expected item tagged [auto], got %v", idx.added[0].Tags())
	}
}

func TestAdd_PreservesProvidedTags(t *testing.T) {
	idx := &mockIndexer{}
	tagger := &mockTagger{tags: []string{"auto"}}
	svc := New(idx).WithTagger(tagger)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", []string{"manual"}, []float32{1, 0}),
	})

	assertOK(t, results[0])
	if tagger.calls != 0 {
		t.Errorf("tagger called %d times for a tagged item", tagger.calls)
	}
	if idx.added[0].Tags()[0] != "manual" {
		t.Errorf("tags = %v", idx.added[0].Tags())
	}
}

func TestAdd_EmbedsVectorlessItems(t *testing.T) {
	idx := &mockIndexer{}
	emb := &mockEmbedder{res: domain.EmbeddingResult{Embedding: []float32{0.5, 0.5}, TotalTokens: 9}}
	svc := New(idx).WithEmbedder(emb)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	results := svc.Add(ctx, []item.Item{
		mustItem(t, "a", []string{"x"}, nil),
	})

	assertOK(t, results[0])
	if emb.calls != 1 {
		t.Errorf("embedder calls = %d", emb.calls)
	}
	if len(idx.added[0].Vector()) != 2 {
		t.Errorf("expected embedded vector, got %v", idx.added[0].Vector())
	}
	if usage.TotalTokens != 9 || !usage.Used {
		t.Errorf("usage = %+v", usage)
	}
}

func TestAdd_VectorlessWithoutEmbedder(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(idx)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", []string{"x"}, nil),
		mustItem(t, "b", []string{"x"}, []float32{1, 0}),
	})

	assertError(t, results[0], "no vector")
	if !errors.Is(results[0].Err(), domain.ErrValidation) {
		t.Error("expected ErrValidation")
	}
	assertOK(t, results[1])
	if len(idx.added) != 1 {
		t.Errorf("expected 1 item in index, got %d", len(idx.added))
	}
}

func TestAdd_QuotaErrorCascades(t *testing.T) {
	idx := &mockIndexer{}
	emb := &mockEmbedder{err: domain.ErrTokenQuotaExceeded}
	svc := New(idx).WithEmbedder(emb)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", []string{"x"}, nil),
		mustItem(t, "b", []string{"x"}, nil),
		mustItem(t, "c", []string{"x"}, nil),
	})

	for _, r := range results {
		assertError(t, r, "quota")
	}
	if emb.calls != 1 {
		t.Errorf("embedder calls = %d, cascade should stop after the first", emb.calls)
	}
}

func TestAdd_PlainEmbedErrorDoesNotCascade(t *testing.T) {
	idx := &mockIndexer{}
	emb := &mockEmbedder{err: errors.New("connection reset")}
	svc := New(idx).WithEmbedder(emb)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", []string{"x"}, nil),
		mustItem(t, "b", []string{"x"}, []float32{1, 0}),
	})

	assertError(t, results[0], "connection reset")
	assertOK(t, results[1])
}

func TestAdd_IndexErrorReported(t *testing.T) {
	idx := &mockIndexer{failFor: map[string]error{"b": domain.NewDimensionMismatch(4, 2)}}
	svc := New(idx)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", []string{"x"}, []float32{1, 0}),
		mustItem(t, "b", []string{"x"}, []float32{1, 0}),
	})

	assertOK(t, results[0])
	assertError(t, results[1], "dimension mismatch")
	if !errors.Is(results[1].Err(), domain.ErrVectorDimMismatch) {
		t.Error("expected ErrVectorDimMismatch")
	}
}

func TestAdd_BatchSizeLimit(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(idx).WithMaxBatchSize(2)

	results := svc.Add(context.Background(), []item.Item{
		mustItem(t, "a", []string{"x"}, []float32{1, 0}),
		mustItem(t, "b", []string{"x"}, []float32{1, 0}),
		mustItem(t, "c", []string{"x"}, []float32{1, 0}),
	})

	for _, r := range results {
		assertError(t, r, "batch size exceeds 2")
	}
	if len(idx.added) != 0 {
		t.Errorf("index should be untouched, has %d items", len(idx.added))
	}
}
