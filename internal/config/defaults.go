package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the per-user config, data and log directories.
const AppName = "scentlog"

const (
	defaultImagesDir           = "images"
	defaultDatasetURL          = "constants.csv"
	defaultDatasetTimeout      = 15
	defaultImagesConcurrency   = 4
	defaultImagesTimeout       = 20
	defaultImagesMemoryEntries = 256
	defaultImagesUserAgent     = "scentlog/dev"
	defaultHistoryProvider     = HistoryProviderGit
	defaultHistoryRepoDir      = "."
	defaultHistoryFilePath     = "constants.csv"
	defaultHistoryPageSize     = 100
	defaultGitHubAPIURL        = "https://api.github.com"
	defaultGitHubRawURL        = "https://raw.githubusercontent.com"
	defaultViewPageSize        = 50
	defaultViewSort            = "rating_desc"
	defaultViewLanguage        = "en"
	defaultLogFormat           = "console"
	defaultLogLevel            = "warn"
)

// History providers.
const (
	HistoryProviderGit    = "git"
	HistoryProviderGitHub = "github"
)

func defaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func defaultLogDir() string {
	return filepath.Join(xdg.StateHome, AppName, "logs")
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir(),
			LogDir:    defaultLogDir(),
			ImagesDir: defaultImagesDir,
		},
		Dataset: Dataset{
			DefaultURL:     defaultDatasetURL,
			RequestTimeout: defaultDatasetTimeout,
		},
		Images: Images{
			Enabled:             true,
			PrefetchConcurrency: defaultImagesConcurrency,
			RequestTimeout:      defaultImagesTimeout,
			MemoryEntries:       defaultImagesMemoryEntries,
			UserAgent:           defaultImagesUserAgent,
		},
		History: History{
			Provider:     defaultHistoryProvider,
			RepoDir:      defaultHistoryRepoDir,
			FilePath:     defaultHistoryFilePath,
			PageSize:     defaultHistoryPageSize,
			GitHubAPIURL: defaultGitHubAPIURL,
			GitHubRawURL: defaultGitHubRawURL,
		},
		View: View{
			PageSize:    defaultViewPageSize,
			DefaultSort: defaultViewSort,
			Language:    defaultViewLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
