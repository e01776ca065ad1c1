package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Search backends selectable through SEARCH_BACKEND.
const (
	BackendSerper = "serper"
	BackendIndex  = "index"
	BackendNone   = "none"
)

// Pipeline holds everything the fetch -> extract -> score -> rank pipeline needs.
type Pipeline struct {
	SearchBackend      string
	SerperAPIKey       string
	SerperURL          string
	SearchTimeout      time.Duration
	SearchRetries      int
	SearchRetryBackoff time.Duration

	ElasticsearchAddr  string
	ElasticsearchIndex string

	QueryProfilePath string

	FetchTimeout     time.Duration
	FetchConcurrency int
	FetchMaxBytes    int64
	UserAgent        string
	MinParagraphText int

	HFToken         string
	ClassifierURL   string
	ClassifyTimeout time.Duration
	MaxClassifyText int

	CorpusCap int
	ReportCap int
}

// Warnings lists configuration gaps that turn a stage into a no-op.
// Callers log them once at start-up.
func (p *Pipeline) Warnings() []string {
	var out []string
	if p.SearchBackend == BackendSerper && p.SerperAPIKey == "" {
		out = append(out, "SERPER_API_KEY is not set; search returns no results")
	}
	if p.SearchBackend == BackendNone {
		out = append(out, "SEARCH_BACKEND=none; search returns no results")
	}
	if p.HFToken == "" {
		out = append(out, "HF_TOKEN is not set; every document scores 0")
	}
	return out
}

// Common contains Kafka parameters shared by every service.
type Common struct {
	KafkaBrokers []string
	RequestTopic string
	ReportTopic  string
	Pipeline     Pipeline
	RunTimeout   time.Duration
	ReportTitle  string
}

// Worker holds configuration for the Kafka request consumer.
type Worker struct {
	Common
	KafkaConsumer string
	BatchSize     int
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr     string
	RankTimeout  time.Duration
	MaxKeywords  int
	RequestQueue bool
}

// Digest configures the scheduled report loop.
type Digest struct {
	Common
	Interval   time.Duration
	Keywords   []string
	DateFilter string
	Recipient  string
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}
	c := &Worker{
		Common:        *common,
		KafkaConsumer: getEnv("KAFKA_CONSUMER_GROUP", "report-worker"),
		BatchSize:     getInt("WORKER_BATCH_SIZE", 10),
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}
	c := &API{
		Common:       *common,
		BindAddr:     getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		RankTimeout:  getDuration("API_RANK_TIMEOUT", "2m"),
		MaxKeywords:  getInt("API_MAX_KEYWORDS", 20),
		RequestQueue: getBool("API_REQUEST_QUEUE", true),
	}

	if c.RankTimeout <= 0 {
		return nil, fmt.Errorf("API_RANK_TIMEOUT must be positive")
	}
	if c.MaxKeywords <= 0 {
		return nil, fmt.Errorf("API_MAX_KEYWORDS must be positive")
	}

	return c, nil
}

// LoadDigest builds a Digest config from environment variables.
func LoadDigest() (*Digest, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}
	c := &Digest{
		Common:     *common,
		Interval:   getDuration("DIGEST_INTERVAL", "168h"),
		Keywords:   splitAndTrim(getEnv("DIGEST_KEYWORDS", "")),
		DateFilter: getEnv("DIGEST_DATE_FILTER", "w"),
		Recipient:  getEnv("DIGEST_RECIPIENT", ""),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("DIGEST_INTERVAL must be positive")
	}
	if len(c.Keywords) == 0 {
		return nil, fmt.Errorf("DIGEST_KEYWORDS must contain at least one keyword")
	}

	return c, nil
}

func loadCommon() (*Common, error) {
	p, err := loadPipeline()
	if err != nil {
		return nil, err
	}
	c := &Common{
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		RequestTopic: getEnv("KAFKA_REQUEST_TOPIC", "report_requests"),
		ReportTopic:  getEnv("KAFKA_REPORT_TOPIC", "reports_ready"),
		Pipeline:     *p,
		RunTimeout:   getDuration("PIPELINE_RUN_TIMEOUT", "5m"),
		ReportTitle:  getEnv("REPORT_TITLE", "Fed Landscape Report"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.RunTimeout <= 0 {
		return nil, fmt.Errorf("PIPELINE_RUN_TIMEOUT must be positive")
	}

	return c, nil
}

func loadPipeline() (*Pipeline, error) {
	p := &Pipeline{
		SearchBackend:      strings.ToLower(getEnv("SEARCH_BACKEND", BackendSerper)),
		SerperAPIKey:       getEnv("SERPER_API_KEY", ""),
		SerperURL:          getEnv("SERPER_URL", "https://google.serper.dev/news"),
		SearchTimeout:      getDuration("SEARCH_TIMEOUT", "20s"),
		SearchRetries:      getInt("SEARCH_RETRIES", 0),
		SearchRetryBackoff: getDuration("SEARCH_RETRY_BACKOFF", "1s"),
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "news"),
		QueryProfilePath:   getEnv("QUERY_PROFILE_PATH", ""),
		FetchTimeout:       getDuration("FETCH_TIMEOUT", "20s"),
		FetchConcurrency:   getInt("FETCH_CONCURRENCY", 0),
		FetchMaxBytes:      int64(getInt("FETCH_MAX_BYTES", 5<<20)),
		UserAgent:          getEnv("FETCH_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
		MinParagraphText:   getInt("EXTRACT_MIN_PARAGRAPH_CHARS", 200),
		HFToken:            getEnv("HF_TOKEN", ""),
		ClassifierURL:      getEnv("CLASSIFIER_URL", "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"),
		ClassifyTimeout:    getDuration("CLASSIFY_TIMEOUT", "20s"),
		MaxClassifyText:    getInt("CLASSIFY_MAX_CHARS", 1024),
		CorpusCap:          getInt("PIPELINE_CORPUS_CAP", 7),
		ReportCap:          getInt("PIPELINE_REPORT_CAP", 7),
	}

	switch p.SearchBackend {
	case BackendSerper, BackendIndex, BackendNone:
	default:
		return nil, fmt.Errorf("SEARCH_BACKEND must be one of serper, index, none")
	}
	if p.SearchTimeout <= 0 || p.FetchTimeout <= 0 || p.ClassifyTimeout <= 0 {
		return nil, fmt.Errorf("SEARCH_TIMEOUT, FETCH_TIMEOUT and CLASSIFY_TIMEOUT must be positive")
	}
	if p.SearchRetries < 0 {
		return nil, fmt.Errorf("SEARCH_RETRIES cannot be negative")
	}
	if p.FetchConcurrency < 0 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY cannot be negative")
	}
	if p.FetchMaxBytes <= 0 {
		return nil, fmt.Errorf("FETCH_MAX_BYTES must be positive")
	}
	if p.MinParagraphText < 0 {
		return nil, fmt.Errorf("EXTRACT_MIN_PARAGRAPH_CHARS cannot be negative")
	}
	if p.MaxClassifyText <= 0 {
		return nil, fmt.Errorf("CLASSIFY_MAX_CHARS must be positive")
	}
	if p.CorpusCap <= 0 || p.ReportCap <= 0 {
		return nil, fmt.Errorf("PIPELINE_CORPUS_CAP and PIPELINE_REPORT_CAP must be positive")
	}

	return p, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
