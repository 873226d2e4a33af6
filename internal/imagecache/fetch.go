package imagecache

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const maxImageBytes = 16 << 20

// Fetcher downloads image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPFetcher fetches images over HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewHTTPFetcher returns a fetcher with the given request timeout and
// User-Agent header.
func NewHTTPFetcher(timeout time.Duration, userAgent string, opts ...Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: strings.TrimSpace(userAgent),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url and returns its bytes and image content type. Responses
// that are not images are rejected.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		contentType = mediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unexpected content type %q", contentType)
	}
	return data, contentType, nil
}

func mediaType(header string) string {
	parsed, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return parsed
}

// Extension maps an image content type to an archive file extension.
func Extension(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}
