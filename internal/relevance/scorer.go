package relevance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/processing"
)

// DefaultMaxChars bounds the text sent per classification.
const DefaultMaxChars = 1024

// Outcome records how scoring went for one document.
type Outcome struct {
	URL     string
	Score   float64
	Skipped bool
	Err     error
}

// Scorer turns classifier confidence into document relevance scores.
type Scorer struct {
	classifier Classifier
	enabled    bool
	maxChars   int
	timeout    time.Duration
	log        *slog.Logger
}

// NewScorer builds a Scorer. With enabled false every score is 0 and the
// classifier is never called.
func NewScorer(c Classifier, enabled bool, maxChars int, timeout time.Duration, log *slog.Logger) *Scorer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Scorer{
		classifier: c,
		enabled:    enabled && c != nil,
		maxChars:   maxChars,
		timeout:    timeout,
		log:        logger.OrDiscard(log),
	}
}

// Criterion builds the relevance phrase for a keyword set.
func Criterion(keywords []string) string {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "A relevant article discusses federal activities like new grants, programs, or policy " +
		"affecting universities and innovation ecosystems related to " + strings.Join(cleaned, ", ") + "."
}

// Score returns the confidence in [0,1] that text matches criterion. Missing
// credentials, text or criterion give 0 without a call; a failed call gives 0
// and the error.
func (s *Scorer) Score(ctx context.Context, text, criterion string) (float64, error) {
	if !s.enabled || strings.TrimSpace(text) == "" || strings.TrimSpace(criterion) == "" {
		return 0, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	score, err := s.classifier.Classify(ctx, processing.Truncate(text, s.maxChars), criterion)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}
	return clamp(score), nil
}

// ScoreAll scores every extracted document concurrently and returns updated
// copies in input order. Documents without full text are skipped with score 0.
func (s *Scorer) ScoreAll(ctx context.Context, docs []models.Document, criterion string) ([]models.Document, []Outcome) {
	outcomes := make([]Outcome, len(docs))

	var g errgroup.Group
	for i, doc := range docs {
		outcomes[i].URL = doc.URL
		if !doc.Extracted() {
			outcomes[i].Skipped = true
			continue
		}
		g.Go(func() error {
			score, err := s.Score(ctx, doc.Text(), criterion)
			outcomes[i].Score = score
			outcomes[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Document, len(docs))
	for i, doc := range docs {
		o := outcomes[i]
		if o.Skipped {
			doc.Score = 0
			doc.Advance(models.StateSkipScored)
		} else {
			doc.Score = o.Score
			doc.Advance(models.StateScored)
			if o.Err != nil {
				s.log.Warn("scoring failed", slog.String("url", doc.URL), slog.Any("err", o.Err))
			} else {
				s.log.Debug("scored document", slog.String("url", doc.URL), slog.Float64("score", o.Score))
			}
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

func clamp(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
