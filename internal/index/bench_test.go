package index

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/kailas-cloud/askdex/internal/domain/category"
	"github.com/kailas-cloud/askdex/internal/domain/item"
	"github.com/kailas-cloud/askdex/internal/domain/recommend/metric"
)

func randomVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rng.Float32()*2 - 1
	}
	return v
}

func seededIndex(b *testing.B, n, dim int) *Index {
	b.Helper()
	rng := rand.New(rand.NewSource(42))
	x, err := New(dim)
	if err != nil {
		b.Fatal(err)
	}
	items := make([]item.Item, n)
	for i := range items {
		items[i] = item.Reconstruct(fmt.Sprintf("item_%d", i), "t", "", category.General,
			nil, randomVector(rng, dim), time.Time{}, 0)
	}
	if err := x.Add(items...); err != nil {
		b.Fatal(err)
	}
	return x
}

func BenchmarkQuery(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	dims := []int{128, 768}

	for _, dim := range dims {
		for _, size := range sizes {
			b.Run(fmt.Sprintf("d=%d/n=%d", dim, size), func(b *testing.B) {
				x := seededIndex(b, size, dim)
				query := randomVector(rand.New(rand.NewSource(7)), dim)

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := x.Query(query, 10, metric.Cosine); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkQueryMetrics(b *testing.B) {
	x := seededIndex(b, 1000, 128)
	query := randomVector(rand.New(rand.NewSource(7)), 128)

	for _, m := range []metric.Metric{metric.Cosine, metric.Euclidean, metric.Manhattan} {
		b.Run(string(m), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := x.Query(query, 10, m); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAdd(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	items := make([]item.Item, 1000)
	for i := range items {
		items[i] = item.Reconstruct(fmt.Sprintf("item_%d", i), "t", "", category.General,
			nil, randomVector(rng, 128), time.Time{}, 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ := New(128)
		if err := x.Add(items...); err != nil {
			b.Fatal(err)
		}
	}
}
