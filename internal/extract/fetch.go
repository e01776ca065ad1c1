package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// DefaultUserAgent looks like a desktop browser; some hosts block unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// ErrStatus marks a page that answered with a non-success status.
var ErrStatus = errors.New("unexpected status")

// ErrNotHTML marks a page whose content type cannot hold article text.
var ErrNotHTML = errors.New("not an html page")

// PageFetcher downloads a page and returns it as UTF-8 markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over HTTP with a browser identity and a
// per-request timeout. Redirects are followed by the client.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBytes  int64
}

// NewHTTPFetcher builds a fetcher. A nil client gets a default one.
func NewHTTPFetcher(client *http.Client, userAgent string, timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &HTTPFetcher{client: client, userAgent: userAgent, timeout: timeout, maxBytes: maxBytes}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isMarkup(contentType) {
		return "", fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), contentType)
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(data), nil
}

func isMarkup(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.Contains(mediaType, "html") || strings.HasSuffix(mediaType, "xml") || strings.HasPrefix(mediaType, "text/")
}
