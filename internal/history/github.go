package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scentlog/internal/logging"
)

const (
	defaultAPIURL   = "https://api.github.com"
	defaultRawURL   = "https://raw.githubusercontent.com"
	defaultPageSize = 100
	maxPages        = 50
)

// GitHubProvider reads revisions through the GitHub REST API.
type GitHubProvider struct {
	owner    string
	repo     string
	filePath string
	apiURL   string
	rawURL   string
	token    string
	pageSize int
	client   *http.Client
	logger   *slog.Logger
}

// GitHubOption configures a GitHubProvider.
type GitHubOption func(*GitHubProvider)

// WithAPIURL overrides the REST API base URL.
func WithAPIURL(u string) GitHubOption {
	return func(p *GitHubProvider) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			p.apiURL = u
		}
	}
}

// WithRawURL overrides the raw content base URL.
func WithRawURL(u string) GitHubOption {
	return func(p *GitHubProvider) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			p.rawURL = u
		}
	}
}

// WithToken sets the bearer token sent to the API.
func WithToken(token string) GitHubOption {
	return func(p *GitHubProvider) {
		p.token = strings.TrimSpace(token)
	}
}

// WithPageSize sets commits per API page.
func WithPageSize(n int) GitHubOption {
	return func(p *GitHubProvider) {
		if n > 0 && n <= 100 {
			p.pageSize = n
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) GitHubOption {
	return func(p *GitHubProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) GitHubOption {
	return func(p *GitHubProvider) {
		p.logger = logging.NewComponentLogger(logger, "history")
	}
}

// NewGitHubProvider returns a provider for owner/repo.
func NewGitHubProvider(owner, repo, filePath string, opts ...GitHubOption) *GitHubProvider {
	p := &GitHubProvider{
		owner:    strings.TrimSpace(owner),
		repo:     strings.TrimSpace(repo),
		filePath: strings.Trim(filePath, "/"),
		apiURL:   defaultAPIURL,
		rawURL:   defaultRawURL,
		pageSize: defaultPageSize,
		client:   &http.Client{Timeout: 20 * time.Second},
		logger:   logging.NewComponentLogger(nil, "history"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message   string `json:"message"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// Revisions pages through the commits API, oldest first.
func (p *GitHubProvider) Revisions(ctx context.Context) ([]Revision, error) {
	var revisions []Revision
	for page := 1; page <= maxPages; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/%s/commits", p.apiURL, url.PathEscape(p.owner), url.PathEscape(p.repo))
		params := url.Values{}
		params.Set("path", p.filePath)
		params.Set("per_page", strconv.Itoa(p.pageSize))
		params.Set("page", strconv.Itoa(page))

		var batch []commitResponse
		if err := p.getJSON(ctx, endpoint+"?"+params.Encode(), &batch); err != nil {
			return nil, err
		}
		for _, c := range batch {
			if c.SHA == "" {
				continue
			}
			revisions = append(revisions, Revision{
				ID:        c.SHA,
				Timestamp: c.Commit.Committer.Date,
				Message:   firstLine(c.Commit.Message),
				URL:       p.contentURL(c.SHA),
			})
		}
		p.logger.Debug("commit page fetched", slog.Int("page", page), slog.Int("commits", len(batch)))
		if len(batch) < p.pageSize {
			break
		}
	}
	reverse(revisions)
	return revisions, nil
}

// Content downloads the raw file as of revisionID.
func (p *GitHubProvider) Content(ctx context.Context, revisionID string) (string, error) {
	revisionID = strings.TrimSpace(revisionID)
	if revisionID == "" {
		return "", fmt.Errorf("%w: %q", ErrRevisionNotFound, revisionID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.contentURL(revisionID), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	p.authorize(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrRevisionNotFound, revisionID)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("raw content returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func (p *GitHubProvider) contentURL(sha string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", p.rawURL, p.owner, p.repo, sha, p.filePath)
}

func (p *GitHubProvider) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (p *GitHubProvider) authorize(req *http.Request) {
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
}

func firstLine(msg string) string {
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}
