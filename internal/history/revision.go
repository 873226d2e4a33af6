// Package history reads past revisions of the bulk CSV file and derives
// per-perfume rating timelines from them.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"scentlog/internal/config"
)

// ErrRevisionNotFound is returned when a revision id matches nothing.
var ErrRevisionNotFound = errors.New("history: revision not found")

// Revision is one committed version of the CSV file.
type Revision struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	URL       string    `json:"url,omitempty"`
}

// ShortID returns the abbreviated revision id.
func (r Revision) ShortID() string {
	if len(r.ID) > 7 {
		return r.ID[:7]
	}
	return r.ID
}

// Label renders "YYYY-MM-DD · sha7 · message".
func (r Revision) Label() string {
	label := r.Timestamp.UTC().Format("2006-01-02") + " · " + r.ShortID()
	if msg := strings.TrimSpace(r.Message); msg != "" {
		label += " · " + msg
	}
	return label
}

// Provider lists revisions of the CSV file and loads their content.
type Provider interface {
	Revisions(ctx context.Context) ([]Revision, error)
	Content(ctx context.Context, revisionID string) (string, error)
}

// Resolve finds the revision whose id equals or starts with id.
func Resolve(revisions []Revision, id string) (Revision, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Revision{}, ErrRevisionNotFound
	}
	var match *Revision
	for i := range revisions {
		if !strings.HasPrefix(revisions[i].ID, id) {
			continue
		}
		if match != nil {
			return Revision{}, fmt.Errorf("history: revision prefix %q is ambiguous", id)
		}
		match = &revisions[i]
	}
	if match == nil {
		return Revision{}, fmt.Errorf("%w: %s", ErrRevisionNotFound, id)
	}
	return *match, nil
}

// NewProvider builds the provider selected by the history section.
func NewProvider(cfg *config.Config, logger *slog.Logger) Provider {
	h := cfg.History
	if h.Provider == config.HistoryProviderGitHub {
		return NewGitHubProvider(h.GitHubOwner, h.GitHubRepo, h.FilePath,
			WithAPIURL(h.GitHubAPIURL),
			WithRawURL(h.GitHubRawURL),
			WithToken(cfg.GitHubToken()),
			WithPageSize(h.PageSize),
			WithLogger(logger),
		)
	}
	return NewGitProvider(h.RepoDir, h.FilePath)
}
