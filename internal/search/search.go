package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// ErrDisabled is returned by a searcher that has no usable backend.
var ErrDisabled = errors.New("search backend disabled")

// Searcher executes one query against a search backend.
type Searcher interface {
	Search(ctx context.Context, q models.Query) ([]models.SearchHit, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q models.Query) ([]models.SearchHit, error)

func (f SearcherFunc) Search(ctx context.Context, q models.Query) ([]models.SearchHit, error) {
	return f(ctx, q)
}

// Outcome is the result of one query. Err is set when the call failed, in
// which case Hits is empty.
type Outcome struct {
	Query    models.Query
	Hits     []models.SearchHit
	Err      error
	Duration time.Duration
}

// Disabled never calls out and returns no hits.
type Disabled struct{}

func (Disabled) Search(context.Context, models.Query) ([]models.SearchHit, error) {
	return nil, ErrDisabled
}

// Gather runs every query concurrently and waits for all of them. Outcomes
// come back in query order; a failed query never cancels the others.
func Gather(ctx context.Context, s Searcher, queries []models.Query, log *slog.Logger) []Outcome {
	log = logger.OrDiscard(log)
	outcomes := make([]Outcome, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			start := time.Now()
			hits, err := s.Search(ctx, q)
			out := Outcome{Query: q, Duration: time.Since(start)}
			if err != nil {
				if !errors.Is(err, ErrDisabled) {
					log.Warn("search query failed",
						slog.String("keyword", q.Keyword),
						slog.Any("err", err),
					)
				}
				out.Err = err
			} else {
				out.Hits = hits
				log.Debug("search query done",
					slog.String("keyword", q.Keyword),
					slog.Int("hits", len(hits)),
					slog.Duration("took", out.Duration),
				)
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// HitLists returns the hit list of every outcome in order, empty for failures.
func HitLists(outcomes []Outcome) [][]models.SearchHit {
	lists := make([][]models.SearchHit, 0, len(outcomes))
	for _, o := range outcomes {
		lists = append(lists, o.Hits)
	}
	return lists
}

// Failed counts outcomes that carry an error.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
