package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	c.normalizeImages()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeView()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir()
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir()
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ImagesDir) == "" {
		c.Paths.ImagesDir = defaultImagesDir
	}
	if c.Paths.ImagesDir, err = expandPath(c.Paths.ImagesDir); err != nil {
		return fmt.Errorf("paths.images_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() error {
	if value, ok := os.LookupEnv("SCENTLOG_DEFAULT_URL"); ok && strings.TrimSpace(value) != "" {
		c.Dataset.DefaultURL = value
	}
	c.Dataset.DefaultURL = strings.TrimSpace(c.Dataset.DefaultURL)
	if c.Dataset.DefaultURL != "" && !IsRemote(c.Dataset.DefaultURL) {
		expanded, err := expandPath(c.Dataset.DefaultURL)
		if err != nil {
			return fmt.Errorf("dataset.default_url: %w", err)
		}
		c.Dataset.DefaultURL = expanded
	}
	if c.Dataset.RequestTimeout <= 0 {
		c.Dataset.RequestTimeout = defaultDatasetTimeout
	}
	return nil
}

func (c *Config) normalizeImages() {
	if c.Images.PrefetchConcurrency <= 0 {
		c.Images.PrefetchConcurrency = defaultImagesConcurrency
	}
	if c.Images.RequestTimeout <= 0 {
		c.Images.RequestTimeout = defaultImagesTimeout
	}
	if c.Images.MemoryEntries <= 0 {
		c.Images.MemoryEntries = defaultImagesMemoryEntries
	}
	c.Images.UserAgent = strings.TrimSpace(c.Images.UserAgent)
	if c.Images.UserAgent == "" {
		c.Images.UserAgent = defaultImagesUserAgent
	}
}

func (c *Config) normalizeHistory() error {
	c.History.Provider = strings.ToLower(strings.TrimSpace(c.History.Provider))
	if c.History.Provider == "" {
		c.History.Provider = defaultHistoryProvider
	}
	if strings.TrimSpace(c.History.RepoDir) == "" {
		c.History.RepoDir = defaultHistoryRepoDir
	}
	var err error
	if c.History.RepoDir, err = expandPath(c.History.RepoDir); err != nil {
		return fmt.Errorf("history.repo_dir: %w", err)
	}
	c.History.FilePath = strings.Trim(strings.TrimSpace(c.History.FilePath), "/")
	if c.History.FilePath == "" {
		c.History.FilePath = defaultHistoryFilePath
	}
	c.History.GitHubOwner = strings.TrimSpace(c.History.GitHubOwner)
	c.History.GitHubRepo = strings.TrimSpace(c.History.GitHubRepo)
	c.History.GitHubToken = strings.TrimSpace(c.History.GitHubToken)
	if c.History.GitHubToken == "" {
		if value, ok := os.LookupEnv("SCENTLOG_GITHUB_TOKEN"); ok {
			c.History.GitHubToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GITHUB_TOKEN"); ok {
			c.History.GitHubToken = strings.TrimSpace(value)
		}
	}
	c.History.GitHubAPIURL = strings.TrimRight(strings.TrimSpace(c.History.GitHubAPIURL), "/")
	if c.History.GitHubAPIURL == "" {
		c.History.GitHubAPIURL = defaultGitHubAPIURL
	}
	c.History.GitHubRawURL = strings.TrimRight(strings.TrimSpace(c.History.GitHubRawURL), "/")
	if c.History.GitHubRawURL == "" {
		c.History.GitHubRawURL = defaultGitHubRawURL
	}
	if c.History.PageSize <= 0 {
		c.History.PageSize = defaultHistoryPageSize
	}
	return nil
}

func (c *Config) normalizeView() {
	if c.View.PageSize <= 0 {
		c.View.PageSize = defaultViewPageSize
	}
	c.View.DefaultSort = strings.ToLower(strings.TrimSpace(c.View.DefaultSort))
	if c.View.DefaultSort == "" {
		c.View.DefaultSort = defaultViewSort
	}
	c.View.Language = strings.TrimSpace(c.View.Language)
	if c.View.Language == "" {
		c.View.Language = defaultViewLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
