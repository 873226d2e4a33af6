package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ImagesDir string `toml:"images_dir"`
}

// Dataset configures the default bootstrap source.
type Dataset struct {
	DefaultURL     string `toml:"default_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Images configures the image cache.
type Images struct {
	Enabled             bool   `toml:"enabled"`
	PrefetchConcurrency int    `toml:"prefetch_concurrency"`
	RequestTimeout      int    `toml:"request_timeout"`
	MemoryEntries       int    `toml:"memory_entries"`
	UserAgent           string `toml:"user_agent"`
}

// History configures the revision provider for the bulk CSV file.
type History struct {
	Provider     string `toml:"provider"`
	RepoDir      string `toml:"repo_dir"`
	FilePath     string `toml:"file_path"`
	GitHubOwner  string `toml:"github_owner"`
	GitHubRepo   string `toml:"github_repo"`
	GitHubToken  string `toml:"github_token"`
	GitHubAPIURL string `toml:"github_api_url"`
	GitHubRawURL string `toml:"github_raw_url"`
	PageSize     int    `toml:"page_size"`
}

// View configures list output.
type View struct {
	PageSize    int    `toml:"page_size"`
	DefaultSort string `toml:"default_sort"`
	Language    string `toml:"language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scentlog.
//
// Configuration sections:
//   - Paths: data, log and local image directories
//   - Dataset: default CSV used to bootstrap an empty collection
//   - Images: image cache fetch settings
//   - History: git or GitHub revision provider for the CSV file
//   - View: pagination, default sort and collation language
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Dataset Dataset `toml:"dataset"`
	Images  Images  `toml:"images"`
	History History `toml:"history"`
	View    View    `toml:"view"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(filepath.Join(xdg.ConfigHome, AppName, "config.toml"))
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(AppName + ".toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, AppName+".db")
}

// LockPath returns the writer lock file guarding collection mutations.
func (c *Config) LockPath() string {
	return c.DatabasePath() + ".lock"
}

// GitHubToken returns the configured token with whitespace trimmed.
func (c *Config) GitHubToken() string {
	return strings.TrimSpace(c.History.GitHubToken)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(strings.TrimSpace(location))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
