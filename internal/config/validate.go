package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

var validSorts = map[string]struct{}{
	"rating_desc": {},
	"rating_asc":  {},
	"name_asc":    {},
	"name_desc":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateView(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"dataset.request_timeout":     c.Dataset.RequestTimeout,
		"images.request_timeout":      c.Images.RequestTimeout,
		"images.prefetch_concurrency": c.Images.PrefetchConcurrency,
		"images.memory_entries":       c.Images.MemoryEntries,
	})
}

func (c *Config) validateHistory() error {
	switch c.History.Provider {
	case HistoryProviderGit:
	case HistoryProviderGitHub:
		if c.History.GitHubOwner == "" || c.History.GitHubRepo == "" {
			return errors.New("history.github_owner and history.github_repo must be set when history.provider is github")
		}
	default:
		return fmt.Errorf("history.provider must be %q or %q, got %q", HistoryProviderGit, HistoryProviderGitHub, c.History.Provider)
	}
	if c.History.PageSize < 1 || c.History.PageSize > 100 {
		return errors.New("history.page_size must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateView() error {
	if _, ok := validSorts[c.View.DefaultSort]; !ok {
		return fmt.Errorf("view.default_sort %q is not one of rating_desc, rating_asc, name_asc, name_desc", c.View.DefaultSort)
	}
	if _, err := language.Parse(c.View.Language); err != nil {
		return fmt.Errorf("view.language: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
}

// ViewLanguage returns the parsed collation language, defaulting to English.
func (c *Config) ViewLanguage() language.Tag {
	tag, err := language.Parse(c.View.Language)
	if err != nil {
		return language.English
	}
	return tag
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
