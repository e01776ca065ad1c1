package extract

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// Outcome records how extraction went for one document.
type Outcome struct {
	URL      string
	Chars    int
	Fallback bool
	Err      error
	Duration time.Duration
}

// Extractor fills in the full text of document stubs.
type Extractor struct {
	fetcher  PageFetcher
	minChars int
	limit    int
	log      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMinParagraphChars sets the paragraph length below which body text is used.
func WithMinParagraphChars(n int) Option {
	return func(e *Extractor) { e.minChars = n }
}

// WithConcurrency caps simultaneous fetches; n <= 0 fetches everything at once.
func WithConcurrency(n int) Option {
	return func(e *Extractor) { e.limit = n }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

// NewExtractor builds an Extractor around fetcher.
func NewExtractor(fetcher PageFetcher, opts ...Option) *Extractor {
	e := &Extractor{fetcher: fetcher, minChars: DefaultMinParagraphChars}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logger.OrDiscard(e.log)
	return e
}

// Extract fetches one page and returns its text.
func (e *Extractor) Extract(ctx context.Context, url string) (Text, error) {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return Text{}, err
	}
	return ExtractText(page, e.minChars)
}

// ExtractAll extracts every document concurrently and returns updated copies
// in input order. A failed document keeps a nil FullText and moves to
// extraction-failed; failures never stop the other fetches.
func (e *Extractor) ExtractAll(ctx context.Context, docs []models.Document) ([]models.Document, []Outcome) {
	type result struct {
		text Text
		err  error
		took time.Duration
	}
	results := make([]result, len(docs))

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, doc := range docs {
		g.Go(func() error {
			start := time.Now()
			var r result
			if err := ctx.Err(); err != nil {
				r.err = err
			} else {
				r.text, r.err = e.Extract(ctx, doc.URL)
			}
			r.took = time.Since(start)
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Document, len(docs))
	outcomes := make([]Outcome, len(docs))
	for i, doc := range docs {
		r := results[i]
		outcomes[i] = Outcome{URL: doc.URL, Err: r.err, Duration: r.took}
		if r.err != nil {
			doc.FullText = nil
			doc.Advance(models.StateExtractionFailed)
			e.log.Warn("extraction failed",
				slog.String("url", doc.URL),
				slog.Any("err", r.err),
			)
		} else {
			body := r.text.Body
			doc.FullText = &body
			doc.Advance(models.StateExtracted)
			outcomes[i].Chars = len([]rune(body))
			outcomes[i].Fallback = r.text.Fallback
			e.log.Debug("extracted page",
				slog.String("url", doc.URL),
				slog.Int("chars", outcomes[i].Chars),
				slog.Bool("fallback", r.text.Fallback),
				slog.Duration("took", r.took),
			)
		}
		out[i] = doc
	}
	return out, outcomes
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
