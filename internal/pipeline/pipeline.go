package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/fed-landscape-radar/internal/dedupe"
	"github.com/DeafMist/fed-landscape-radar/internal/extract"
	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/rank"
	"github.com/DeafMist/fed-landscape-radar/internal/relevance"
	"github.com/DeafMist/fed-landscape-radar/internal/search"
)

// Status tells callers why a ranked list looks the way it does.
type Status string

const (
	// StatusOK means every unit of work succeeded.
	StatusOK Status = "ok"
	// StatusNoInput means no keywords were given; nothing was called.
	StatusNoInput Status = "no_input"
	// StatusNoResults means every search worked but found nothing usable.
	StatusNoResults Status = "no_results"
	// StatusDegraded means some queries, fetches or scores failed.
	StatusDegraded Status = "degraded"
	// StatusFailed means a whole stage failed or the run was cancelled.
	StatusFailed Status = "failed"
)

// Planner expands keywords into queries.
type Planner interface {
	Plan(keywords []string, recency models.Recency) []models.Query
}

// DocumentExtractor fills in document full text.
type DocumentExtractor interface {
	ExtractAll(ctx context.Context, docs []models.Document) ([]models.Document, []extract.Outcome)
}

// DocumentScorer assigns relevance scores.
type DocumentScorer interface {
	ScoreAll(ctx context.Context, docs []models.Document, criterion string) ([]models.Document, []relevance.Outcome)
}

// Request is one pipeline run. An empty Criterion is derived from Keywords.
type Request struct {
	Keywords  []string
	Recency   models.Recency
	Criterion string
}

// Stats counts what happened in each stage.
type Stats struct {
	Queries          int           `json:"queries"`
	FailedQueries    int           `json:"failed_queries"`
	Hits             int           `json:"hits"`
	MissingURL       int           `json:"missing_url"`
	Duplicates       int           `json:"duplicates"`
	Truncated        int           `json:"truncated"`
	Corpus           int           `json:"corpus"`
	Extracted        int           `json:"extracted"`
	ExtractionFailed int           `json:"extraction_failed"`
	Fallbacks        int           `json:"fallback_extractions"`
	Scored           int           `json:"scored"`
	ScoringFailed    int           `json:"scoring_failed"`
	Ranked           int           `json:"ranked"`
	Dropped          int           `json:"dropped"`
	Duration         time.Duration `json:"duration_ns"`
}

// Result is the outcome of one run. Ranked is ordered best-first and never
// longer than the report cap.
type Result struct {
	RunID     string            `json:"run_id"`
	Status    Status            `json:"status"`
	Criterion string            `json:"criterion,omitempty"`
	Ranked    []models.Document `json:"documents"`
	Stats     Stats             `json:"stats"`
}

// Config wires the stages together.
type Config struct {
	Planner   Planner
	Searcher  search.Searcher
	Extractor DocumentExtractor
	Scorer    DocumentScorer
	CorpusCap int
	ReportCap int
	Log       *slog.Logger
}

// Pipeline coordinates one fan-out/fan-in run per call. It holds no state
// between runs.
type Pipeline struct {
	planner   Planner
	searcher  search.Searcher
	extractor DocumentExtractor
	scorer    DocumentScorer
	corpusCap int
	reportCap int
	log       *slog.Logger
	newID     func() string
}

// New builds a Pipeline. Non-positive caps fall back to rank.DefaultCap.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		planner:   cfg.Planner,
		searcher:  cfg.Searcher,
		extractor: cfg.Extractor,
		scorer:    cfg.Scorer,
		corpusCap: cfg.CorpusCap,
		reportCap: cfg.ReportCap,
		log:       logger.OrDiscard(cfg.Log),
		newID:     uuid.NewString,
	}
	if p.corpusCap <= 0 {
		p.corpusCap = rank.DefaultCap
	}
	if p.reportCap <= 0 {
		p.reportCap = rank.DefaultCap
	}
	if p.searcher == nil {
		p.searcher = search.Disabled{}
	}
	return p
}

// Run executes search, merge, extraction, scoring and ranking. It always
// returns a Result; failures are reflected in Status and Stats.
func (p *Pipeline) Run(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	res.RunID = p.newID()
	log := p.log.With(slog.String("run_id", res.RunID))
	defer func() {
		res.Stats.Ranked = len(res.Ranked)
		res.Stats.Duration = time.Since(start)
		log.Info("pipeline run finished",
			slog.String("status", string(res.Status)),
			slog.Int("queries", res.Stats.Queries),
			slog.Int("failed_queries", res.Stats.FailedQueries),
			slog.Int("corpus", res.Stats.Corpus),
			slog.Int("extracted", res.Stats.Extracted),
			slog.Int("ranked", res.Stats.Ranked),
			slog.Duration("took", res.Stats.Duration),
		)
	}()

	queries := p.planner.Plan(req.Keywords, req.Recency)
	res.Stats.Queries = len(queries)
	if len(queries) == 0 {
		res.Status = StatusNoInput
		res.Ranked = []models.Document{}
		return res
	}

	outcomes := search.Gather(ctx, p.searcher, queries, log)
	res.Stats.FailedQueries = search.Failed(outcomes)
	allSearchesFailed := res.Stats.FailedQueries == len(outcomes)

	docs, merged := dedupe.MergeHits(search.HitLists(outcomes), p.corpusCap)
	res.Stats.Hits = merged.Hits
	res.Stats.MissingURL = merged.MissingURL
	res.Stats.Duplicates = merged.Duplicates
	res.Stats.Truncated = merged.Truncated
	res.Stats.Corpus = len(docs)

	if len(docs) == 0 {
		res.Ranked = []models.Document{}
		switch {
		case allSearchesFailed || ctx.Err() != nil:
			res.Status = StatusFailed
		case res.Stats.FailedQueries > 0:
			res.Status = StatusDegraded
		default:
			res.Status = StatusNoResults
		}
		return res
	}
	if ctx.Err() != nil {
		return p.abort(res, docs)
	}

	docs, extracted := p.extractor.ExtractAll(ctx, docs)
	res.Stats.ExtractionFailed = extract.Failed(extracted)
	res.Stats.Extracted = len(extracted) - res.Stats.ExtractionFailed
	for _, o := range extracted {
		if o.Err == nil && o.Fallback {
			res.Stats.Fallbacks++
		}
	}
	if ctx.Err() != nil {
		return p.abort(res, docs)
	}

	res.Criterion = req.Criterion
	if res.Criterion == "" {
		res.Criterion = relevance.Criterion(req.Keywords)
	}

	docs, scored := p.scorer.ScoreAll(ctx, docs, res.Criterion)
	res.Stats.ScoringFailed = relevance.Failed(scored)
	for _, o := range scored {
		if !o.Skipped {
			res.Stats.Scored++
		}
	}
	if ctx.Err() != nil {
		return p.abort(res, docs)
	}

	var dropped []models.Document
	res.Ranked, dropped = rank.Partition(docs, p.reportCap)
	res.Stats.Dropped = len(dropped)

	switch {
	case res.Stats.Extracted == 0:
		res.Status = StatusFailed
	case res.Stats.FailedQueries > 0 || res.Stats.ExtractionFailed > 0 || res.Stats.ScoringFailed > 0:
		res.Status = StatusDegraded
	default:
		res.Status = StatusOK
	}
	return res
}

func (p *Pipeline) abort(res Result, docs []models.Document) Result {
	res.Status = StatusFailed
	res.Ranked = rank.Select(docs, p.reportCap)
	return res
}
