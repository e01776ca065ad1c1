package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// DefaultSerperURL is the news endpoint of the Serper search API.
const DefaultSerperURL = "https://google.serper.dev/news"

// SerperClient queries the Serper news API.
type SerperClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

type serperRequest struct {
	Q   string `json:"q"`
	Tbs string `json:"tbs,omitempty"`
}

type serperResponse struct {
	News []models.SearchHit `json:"news"`
}

// NewSerperClient builds a client. An empty baseURL uses DefaultSerperURL and
// a nil httpClient gets one with the given timeout.
func NewSerperClient(apiKey, baseURL string, httpClient *http.Client, timeout time.Duration) *SerperClient {
	if baseURL == "" {
		baseURL = DefaultSerperURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &SerperClient{client: httpClient, apiKey: apiKey, baseURL: baseURL}
}

func (s *SerperClient) Search(ctx context.Context, q models.Query) ([]models.SearchHit, error) {
	if s.apiKey == "" {
		return nil, ErrDisabled
	}

	body := serperRequest{Q: q.Text}
	if code := q.Recency.Code(); code != "" {
		body.Tbs = "qdr:" + code
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return parsed.News, nil
}
