package relevance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultClassifierURL is the hosted zero-shot NLI model.
const DefaultClassifierURL = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"

// ErrNoCredentials is returned when the classifier has no API token.
var ErrNoCredentials = errors.New("classifier credentials missing")

// Classifier scores how well text matches a single candidate label.
type Classifier interface {
	Classify(ctx context.Context, text, label string) (float64, error)
}

// HuggingFaceClassifier calls the Hugging Face inference API.
type HuggingFaceClassifier struct {
	client *http.Client
	token  string
	url    string
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// NewHuggingFaceClassifier builds a client. An empty url uses
// DefaultClassifierURL and a nil httpClient gets one with timeout.
func NewHuggingFaceClassifier(token, url string, httpClient *http.Client, timeout time.Duration) *HuggingFaceClassifier {
	if url == "" {
		url = DefaultClassifierURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HuggingFaceClassifier{client: httpClient, token: token, url: url}
}

// Configured reports whether the classifier has credentials.
func (c *HuggingFaceClassifier) Configured() bool {
	return c.token != ""
}

func (c *HuggingFaceClassifier) Classify(ctx context.Context, text, label string) (float64, error) {
	if c.token == "" {
		return 0, ErrNoCredentials
	}

	payload, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: []string{label}},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal classify body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed zeroShotResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode classify response: %w", err)
	}
	if len(parsed.Scores) == 0 {
		return 0, errors.New("classifier returned no scores")
	}
	return parsed.Scores[0], nil
}
