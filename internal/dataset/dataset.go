// Package dataset fetches the default CSV used to bootstrap an empty
// collection.
package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"scentlog/internal/config"
	"scentlog/internal/logging"
)

const maxDatasetBytes = 32 << 20

// Loader reads the default dataset from a URL or a local path.
type Loader struct {
	location string
	client   *http.Client
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithLogger sets the logger used for fetch warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logging.NewComponentLogger(logger, "dataset")
	}
}

// NewLoader returns a loader for location. An empty location disables the
// default dataset.
func NewLoader(location string, timeout time.Duration, opts ...Option) *Loader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	l := &Loader{
		location: strings.TrimSpace(location),
		client:   &http.Client{Timeout: timeout},
		logger:   logging.NewComponentLogger(nil, "dataset"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FromConfig builds a loader from the dataset section.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Loader {
	return NewLoader(cfg.Dataset.DefaultURL, time.Duration(cfg.Dataset.RequestTimeout)*time.Second, WithLogger(logger))
}

// Location reports the configured source.
func (l *Loader) Location() string {
	return l.location
}

// Fetch returns the dataset text or an error.
func (l *Loader) Fetch(ctx context.Context) (string, error) {
	if l.location == "" {
		return "", fmt.Errorf("no default dataset configured")
	}
	if !config.IsRemote(l.location) {
		data, err := os.ReadFile(l.location)
		if err != nil {
			return "", fmt.Errorf("read dataset: %w", err)
		}
		return string(data), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dataset fetch returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// Default returns the dataset text, or the empty string when it cannot be
// obtained. Failures are logged, never returned.
func (l *Loader) Default(ctx context.Context) string {
	if l.location == "" {
		l.logger.Debug("default dataset disabled")
		return ""
	}
	text, err := l.Fetch(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, l.logger), "default dataset unavailable", "dataset_fetch_failed",
			slog.String(logging.FieldURL, l.location),
			logging.Error(err),
			slog.String(logging.FieldErrorHint, "check dataset.default_url or import a CSV manually"),
			slog.String(logging.FieldImpact, "collection starts empty"),
		)
		return ""
	}
	return text
}
