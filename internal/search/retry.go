package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// Retrying retries a Searcher with exponential backoff.
type Retrying struct {
	Next     Searcher
	Attempts int
	Backoff  time.Duration
	MaxDelay time.Duration
	Log      *slog.Logger
}

// WithRetry wraps s so that a failed call is retried up to retries more times.
// With retries == 0 it returns s unchanged.
func WithRetry(s Searcher, retries int, backoff time.Duration, log *slog.Logger) Searcher {
	if retries <= 0 {
		return s
	}
	return &Retrying{Next: s, Attempts: retries + 1, Backoff: backoff, MaxDelay: 30 * time.Second, Log: log}
}

func (r *Retrying) Search(ctx context.Context, q models.Query) ([]models.SearchHit, error) {
	log := logger.OrDiscard(r.Log)
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := r.Backoff

	var lastErr error
	for attempt := range attempts {
		hits, err := r.Next.Search(ctx, q)
		if err == nil {
			return hits, nil
		}
		lastErr = err
		if errors.Is(err, ErrDisabled) || ctx.Err() != nil || attempt == attempts-1 {
			break
		}

		log.Warn("search failed, retrying",
			slog.String("keyword", q.Keyword),
			slog.Any("err", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
		if r.MaxDelay > 0 && delay > r.MaxDelay {
			delay = r.MaxDelay
		}
	}
	return nil, lastErr
}
