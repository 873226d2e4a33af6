package history

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type commandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// GitProvider reads revisions from a local git checkout.
type GitProvider struct {
	repoDir  string
	filePath string
	run      commandRunner
}

// NewGitProvider returns a provider for filePath inside repoDir.
func NewGitProvider(repoDir, filePath string) *GitProvider {
	return &GitProvider{
		repoDir:  repoDir,
		filePath: strings.Trim(filePath, "/"),
		run:      defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (g *GitProvider) WithCommandRunner(r commandRunner) {
	if r != nil {
		g.run = r
	}
}

// Revisions lists commits touching the file, oldest first.
func (g *GitProvider) Revisions(ctx context.Context) ([]Revision, error) {
	out, err := g.run(ctx, g.repoDir, "git", "log", "--follow", "--format=%H%x09%cI%x09%s", "--", g.filePath)
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	var revisions []Revision
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			continue
		}
		rev := Revision{ID: parts[0], Timestamp: ts}
		if len(parts) == 3 {
			rev.Message = parts[2]
		}
		revisions = append(revisions, rev)
	}
	reverse(revisions)
	return revisions, nil
}

// Content returns the file as of revisionID.
func (g *GitProvider) Content(ctx context.Context, revisionID string) (string, error) {
	revisionID = strings.TrimSpace(revisionID)
	if revisionID == "" || strings.HasPrefix(revisionID, "-") {
		return "", fmt.Errorf("%w: %q", ErrRevisionNotFound, revisionID)
	}
	out, err := g.run(ctx, g.repoDir, "git", "show", revisionID+":"+g.filePath)
	if err != nil {
		return "", fmt.Errorf("git show %s: %w", revisionID, err)
	}
	return string(out), nil
}

func defaultCommandRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

func reverse(revisions []Revision) {
	for i, j := 0, len(revisions)-1; i < j; i, j = i+1, j-1 {
		revisions[i], revisions[j] = revisions[j], revisions[i]
	}
}
