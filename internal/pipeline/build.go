package pipeline

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DeafMist/fed-landscape-radar/internal/config"
	"github.com/DeafMist/fed-landscape-radar/internal/elasticsearch"
	"github.com/DeafMist/fed-landscape-radar/internal/extract"
	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/query"
	"github.com/DeafMist/fed-landscape-radar/internal/relevance"
	"github.com/DeafMist/fed-landscape-radar/internal/search"
)

// FromConfig assembles a Pipeline with the backends cfg selects and logs
// configuration gaps once.
func FromConfig(cfg config.Pipeline, log *slog.Logger) (*Pipeline, error) {
	log = logger.OrDiscard(log)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	profile, err := query.LoadProfile(cfg.QueryProfilePath)
	if err != nil {
		return nil, err
	}

	searcher, err := newSearcher(cfg, profile, log)
	if err != nil {
		return nil, err
	}

	fetcher := extract.NewHTTPFetcher(&http.Client{}, cfg.UserAgent, cfg.FetchTimeout, cfg.FetchMaxBytes)
	extractor := extract.NewExtractor(fetcher,
		extract.WithMinParagraphChars(cfg.MinParagraphText),
		extract.WithConcurrency(cfg.FetchConcurrency),
		extract.WithLogger(log),
	)

	classifier := relevance.NewHuggingFaceClassifier(cfg.HFToken, cfg.ClassifierURL, nil, cfg.ClassifyTimeout)
	scorer := relevance.NewScorer(classifier, classifier.Configured(), cfg.MaxClassifyText, cfg.ClassifyTimeout, log)

	return New(Config{
		Planner:   query.NewPlanner(profile),
		Searcher:  searcher,
		Extractor: extractor,
		Scorer:    scorer,
		CorpusCap: cfg.CorpusCap,
		ReportCap: cfg.ReportCap,
		Log:       log,
	}), nil
}

func newSearcher(cfg config.Pipeline, profile query.Profile, log *slog.Logger) (search.Searcher, error) {
	var s search.Searcher
	switch cfg.SearchBackend {
	case config.BackendSerper:
		if cfg.SerperAPIKey == "" {
			return search.Disabled{}, nil
		}
		s = search.NewSerperClient(cfg.SerperAPIKey, cfg.SerperURL, nil, cfg.SearchTimeout)
	case config.BackendIndex:
		es, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			return nil, err
		}
		s = search.NewIndexSearcher(es, profile.DomainTerms, cfg.CorpusCap)
	case config.BackendNone:
		return search.Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.SearchBackend)
	}
	return search.WithRetry(s, cfg.SearchRetries, cfg.SearchRetryBackoff, log), nil
}
