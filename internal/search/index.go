package search

import (
	"context"
	"strings"
	"time"

	"github.com/DeafMist/fed-landscape-radar/internal/elasticsearch"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/processing"
)

// NewsIndex is the part of the Elasticsearch client the index searcher uses.
type NewsIndex interface {
	SearchNews(ctx context.Context, params elasticsearch.SearchParams) ([]models.NewsDocument, error)
}

// IndexSearcher answers queries from a local news index instead of the web.
// The keyword must match as a phrase and one of the profile's domain terms
// should match; site and exclusion operators have no index equivalent.
type IndexSearcher struct {
	index   NewsIndex
	phrases []string
	size    int
	now     func() time.Time
}

// NewIndexSearcher builds a searcher returning at most size hits per query.
func NewIndexSearcher(index NewsIndex, phrases []string, size int) *IndexSearcher {
	return &IndexSearcher{index: index, phrases: phrases, size: size, now: time.Now}
}

func (s *IndexSearcher) Search(ctx context.Context, q models.Query) ([]models.SearchHit, error) {
	params := elasticsearch.SearchParams{
		Query:   q.Keyword,
		Phrases: s.phrases,
		Size:    s.size,
	}
	if window := q.Recency.Window(); window > 0 {
		since := s.now().Add(-window)
		params.Since = &since
	}

	docs, err := s.index.SearchNews(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]models.SearchHit, 0, len(docs))
	for _, d := range docs {
		link := strings.TrimSpace(d.URL)
		if link == "" && len(d.URLs) > 0 {
			link = d.URLs[0]
		}
		hit := models.SearchHit{
			Title:   d.Title,
			URL:     link,
			Source:  d.Source,
			Snippet: processing.Truncate(processing.CollapseWhitespace(d.Text), 280),
		}
		if !d.Timestamp.IsZero() {
			hit.Published = d.Timestamp.UTC().Format(time.RFC3339)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
