package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scentlog/internal/collection"
	"scentlog/internal/config"
	"scentlog/internal/dataset"
	"scentlog/internal/imagecache"
	"scentlog/internal/logging"
	"scentlog/internal/store"
)

type commandContext struct {
	configFlag   *string
	jsonFlag     *bool
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return *c.logLevelFlag
}

func (c *commandContext) ensureLogger(cfg *config.Config) *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(cfg, c.logLevel())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// runtime bundles the resources a collection command works with.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	session *collection.Session
}

// imageCache builds the layered image cache. Network fetches are disabled
// when images are turned off.
func (r *runtime) imageCache() (*imagecache.Cache, error) {
	var fetcher imagecache.Fetcher
	if r.cfg.Images.Enabled {
		fetcher = imagecache.NewHTTPFetcher(
			time.Duration(r.cfg.Images.RequestTimeout)*time.Second,
			r.cfg.Images.UserAgent,
		)
	}
	return imagecache.New(r.store, imagecache.Options{
		Fetcher:       fetcher,
		LocalDir:      r.cfg.Paths.ImagesDir,
		Concurrency:   r.cfg.Images.PrefetchConcurrency,
		MemoryEntries: r.cfg.Images.MemoryEntries,
		Logger:        r.logger,
	})
}

// commandCtx returns the command context tagged with a fresh correlation id.
func commandCtx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithCorrelationID(ctx, uuid.NewString())
}

// withStore opens the database for fn without loading the collection.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(context.Context, *runtime) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := commandCtx(cmd)
	logger := c.ensureLogger(cfg).With(slog.String(logging.FieldCommand, cmd.CommandPath()))

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	return fn(ctx, &runtime{cfg: cfg, logger: logger, store: st})
}

// withSession opens the store and loads the collection for fn.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *runtime) error) error {
	return c.withStore(cmd, func(ctx context.Context, rt *runtime) error {
		session, err := collection.Open(ctx, rt.store, collection.Options{
			Dataset: dataset.FromConfig(rt.cfg, rt.logger),
			Logger:  rt.logger,
		})
		if err != nil {
			return err
		}
		rt.session = session
		return fn(ctx, rt)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
