package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// Client wraps go-elasticsearch with helpers tailored to this project.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// SearchParams narrow a news index query.
type SearchParams struct {
	Query   string
	Phrases []string
	Since   *time.Time
	Size    int
}

// New instantiates the Elasticsearch client.
func New(addr, index string, log *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &Client{es: es, index: index, log: logger.OrDiscard(log)}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// SearchNews runs a bool query: the free-text query must match title or text,
// at least one of Phrases should match when given, and Since filters by timestamp.
func (c *Client) SearchNews(ctx context.Context, params SearchParams) ([]models.NewsDocument, error) {
	if params.Size <= 0 {
		params.Size = 10
	}
	if params.Size > 100 {
		params.Size = 100
	}

	must := make([]map[string]any, 0, 1)
	should := make([]map[string]any, 0, len(params.Phrases))
	filters := make([]map[string]any, 0, 1)

	if params.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  params.Query,
				"type":   "phrase",
				"fields": []string{"title^2", "text"},
			},
		})
	}

	for _, phrase := range params.Phrases {
		should = append(should, map[string]any{
			"multi_match": map[string]any{
				"query":  phrase,
				"type":   "phrase",
				"fields": []string{"title", "text"},
			},
		})
	}

	if params.Since != nil {
		filters = append(filters, map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{
					"gte": params.Since.UTC().Format(time.RFC3339),
				},
			},
		})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(should) > 0 {
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	body := map[string]any{
		"size":  params.Size,
		"query": map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"timestamp": map[string]any{"order": "desc"}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.NewsDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.NewsDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}

	c.log.Debug("index search done", slog.String("query", params.Query), slog.Int("hits", len(items)))
	return items, nil
}

// Health pings Elasticsearch to ensure connectivity.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}
