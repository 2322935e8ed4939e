package index

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/item"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/result"
)

// Index is an exact in-memory nearest-neighbor index over catalog items
// (linear scan, min-heap top-k). Readers and the writer are serialized by an
// internal read-write lock, so Add and Query are safe to call concurrently.
type Index struct {
	mu    sync.RWMutex
	dims  int
	items []item.Item
	byID  map[string]int
}

// New creates an index for vectors of the given dimensionality.
func New(dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrValidation, dims)
	}
	return &Index{dims: dims, byID: make(map[string]int)}, nil
}

// Add validates and inserts items. The whole batch is checked before any
// mutation, so a rejected batch leaves the index unchanged. An item whose ID
// is already present is replaced in place, keeping its original insertion
// ordinal (and therefore its tie-break rank).
func (x *Index) Add(items ...item.Item) error {
	for _, it := range items {
		if len(it.Vector()) != x.dims {
			return fmt.Errorf("item %q: %w", it.ID(), domain.NewDimensionMismatch(x.dims, len(it.Vector())))
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, it := range items {
		if pos, ok := x.byID[it.ID()]; ok {
			x.items[pos] = it
			continue
		}
		x.byID[it.ID()] = len(x.items)
		x.items = append(x.items, it)
	}
	return nil
}

// Query returns the topK nearest items under the metric, ordered by
// descending similarity; equal scores rank the earlier-inserted item first.
// An empty index yields an empty slice, not an error.
func (x *Index) Query(vector []float32, topK int, m metric.Metric) ([]result.Scored, error) {
	if len(vector) != x.dims {
		return nil, domain.NewDimensionMismatch(x.dims, len(vector))
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidTopK, topK)
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMetric, m)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.items) == 0 {
		return []result.Scored{}, nil
	}

	h := &hitHeap{}
	heap.Init(h)
	for ord, it := range x.items {
		cand := rankedHit{item: it, score: score(m, vector, it.Vector()), ord: ord}
		if h.Len() < topK {
			heap.Push(h, cand)
		} else if weaker((*h)[0], cand) {
			heap.Pop(h)
			heap.Push(h, cand)
		}
	}

	hits := make([]result.Scored, h.Len())
	for i := len(hits) - 1; i >= 0; i-- {
		rh := heap.Pop(h).(rankedHit)
		hits[i] = result.NewScored(rh.item, rh.score)
	}
	return hits, nil
}

// Get returns the item with the given ID.
func (x *Index) Get(id string) (item.Item, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	pos, ok := x.byID[id]
	if !ok {
		return item.Item{}, false
	}
	return x.items[pos], true
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.items)
}

// Dimensions returns the configured vector dimensionality.
func (x *Index) Dimensions() int { return x.dims }

// rankedHit carries the insertion ordinal through the heap so equal scores
// keep insertion order.
type rankedHit struct {
	item  item.Item
	score float64
	ord   int
}

// weaker reports whether a ranks below b: lower score, or equal score and
// later insertion.
func weaker(a, b rankedHit) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.ord > b.ord
}

// hitHeap is a min-heap by rank; the root is the weakest of the current top-k.
type hitHeap []rankedHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return weaker(h[i], h[j]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(v any) { *h = append(*h, v.(rankedHit)) }

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
