package websearch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/domain/answer"
	"github.com/kailas-cloud/askdex/internal/domain/resolution"
)

type mockSearch struct {
	results   []domain.WebSearchResult
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockSearch) Search(_ context.Context, query string, limit int) ([]domain.WebSearchResult, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.results, m.err
}

func query(t *testing.T) resolution.Query {
	t.Helper()
	q, err := resolution.NewQuery("current EUR USD exchange rate", resolution.Context{})
	require.NoError(t, err)
	return q
}

func TestExecute_JoinsSnippets(t *testing.T) {
	client := &mockSearch{results: []domain.WebSearchResult{
		{Title: "ECB reference rates", URL: "https://ecb.example", Snippet: "EUR/USD at 1.09"},
		{Title: "Market watch", Snippet: "Euro steady against the dollar"},
	}}
	s := New(client, 0.5)

	ans, err := s.Execute(context.Background(), query(t))
	require.NoError(t, err)

	assert.Contains(t, ans.Text(), "ECB reference rates: EUR/USD at 1.09 (https://ecb.example)")
	assert.Contains(t, ans.Text(), "Market watch: Euro steady against the dollar")
	assert.Equal(t, answer.SourceWebSearch, ans.Source())
	assert.Equal(t, "2", ans.Metadata()["results"])
	assert.Equal(t, "current EUR USD exchange rate", client.lastQuery)
	assert.Equal(t, DefaultLimit, client.lastLimit)
}

func TestExecute_ConfidenceGrowsWithResultsUpToCap(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{1, 0.45},
		{2, 0.6},
		{3, 0.75},
		{5, 0.75}, // capped
	}
	for _, tc := range cases {
		results := make([]domain.WebSearchResult, tc.count)
		for i := range results {
			results[i] = domain.WebSearchResult{Title: "r"}
		}
		s := New(&mockSearch{results: results}, 0.5)

		ans, err := s.Execute(context.Background(), query(t))
		require.NoError(t, err)
		assert.InDelta(t, tc.want, ans.Confidence(), 1e-9, "count=%d", tc.count)
	}
}

func TestExecute_NoResultsYieldsZeroConfidence(t *testing.T) {
	s := New(&mockSearch{}, 0.5)

	ans, err := s.Execute(context.Background(), query(t))
	require.NoError(t, err)

	assert.Zero(t, ans.Confidence())
	assert.Empty(t, ans.Text())
}

func TestExecute_ClientErrorPropagates(t *testing.T) {
	s := New(&mockSearch{err: errors.New("engine unreachable")}, 0.5)

	_, err := s.Execute(context.Background(), query(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine unreachable")
}

func TestWithLimit(t *testing.T) {
	client := &mockSearch{results: []domain.WebSearchResult{{Title: "r"}}}
	s := New(client, 0.5).WithLimit(2)

	_, err := s.Execute(context.Background(), query(t))
	require.NoError(t, err)
	assert.Equal(t, 2, client.lastLimit)
}
