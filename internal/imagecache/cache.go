package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"scentlog/internal/logging"
	"scentlog/internal/record"
	"scentlog/internal/store"
)

// BlobStore is the persistent image table.
type BlobStore interface {
	GetImage(ctx context.Context, url string) (store.Image, bool, error)
	PutImage(ctx context.Context, img store.Image) error
	DeleteImagesExcept(ctx context.Context, active map[string]struct{}) (int, error)
	ImageStats(ctx context.Context) (store.ImageStats, error)
}

// Origin says where an image came from.
type Origin string

const (
	OriginMemory  Origin = "memory"
	OriginStore   Origin = "store"
	OriginNetwork Origin = "network"
	OriginLocal   Origin = "local"
)

var localExtensions = []string{"jpg", "jpeg", "png", "webp"}

// Options configures a Cache.
type Options struct {
	Fetcher       Fetcher
	LocalDir      string
	Concurrency   int
	MemoryEntries int
	Logger        *slog.Logger
}

// Cache layers a memory LRU over the blob store and a fetcher.
type Cache struct {
	blobs       BlobStore
	fetcher     Fetcher
	memory      *lru.Cache[string, store.Image]
	localDir    string
	concurrency int
	logger      *slog.Logger

	// inflight collapses concurrent fetches of one URL.
	inflight singleflight.Group
}

// New builds a Cache. A nil Fetcher disables network fetches.
func New(blobs BlobStore, opts Options) (*Cache, error) {
	if blobs == nil {
		return nil, errors.New("imagecache: blob store is required")
	}
	entries := opts.MemoryEntries
	if entries <= 0 {
		entries = 256
	}
	memory, err := lru.New[string, store.Image](entries)
	if err != nil {
		return nil, fmt.Errorf("imagecache: memory cache: %w", err)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Cache{
		blobs:       blobs,
		fetcher:     opts.Fetcher,
		memory:      memory,
		localDir:    opts.LocalDir,
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(opts.Logger, "imagecache"),
	}, nil
}

// Cached returns the image for url from memory or the blob store without
// touching the network.
func (c *Cache) Cached(ctx context.Context, url string) (store.Image, Origin, bool) {
	url = strings.TrimSpace(url)
	if url == "" {
		return store.Image{}, "", false
	}
	if img, ok := c.memory.Get(url); ok {
		return img, OriginMemory, true
	}
	img, ok, err := c.blobs.GetImage(ctx, url)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "image cache read failed", "image_cache_read_failed",
			slog.String(logging.FieldURL, url),
			logging.Error(err),
			slog.String(logging.FieldImpact, "image treated as not cached"),
		)
		return store.Image{}, "", false
	}
	if !ok {
		return store.Image{}, "", false
	}
	c.memory.Add(url, img)
	return img, OriginStore, true
}

// Get returns the image for url, fetching and storing it on a miss.
func (c *Cache) Get(ctx context.Context, url string) (store.Image, Origin, bool) {
	if img, origin, ok := c.Cached(ctx, url); ok {
		return img, origin, true
	}
	img, ok := c.download(ctx, strings.TrimSpace(url))
	if !ok {
		return store.Image{}, "", false
	}
	return img, OriginNetwork, true
}

// download fetches url after a cache miss, logging failures.
func (c *Cache) download(ctx context.Context, url string) (store.Image, bool) {
	if url == "" || c.fetcher == nil {
		return store.Image{}, false
	}
	img, err := c.fetch(ctx, url)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "image fetch failed", "image_fetch_failed",
			slog.String(logging.FieldURL, url),
			logging.Error(err),
			slog.String(logging.FieldErrorHint, "check the image URL or network connectivity"),
			slog.String(logging.FieldImpact, "placeholder shown for this perfume"),
		)
		return store.Image{}, false
	}
	return img, true
}

// fetch downloads and stores url once for all concurrent callers. The shared
// download outlives a caller whose ctx ends; that caller stops waiting.
func (c *Cache) fetch(ctx context.Context, url string) (store.Image, error) {
	ch := c.inflight.DoChan(url, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		data, contentType, err := c.fetcher.Fetch(fetchCtx, url)
		if err != nil {
			return store.Image{}, err
		}
		img := store.Image{URL: url, ContentType: contentType, Data: data}
		if err := c.blobs.PutImage(fetchCtx, img); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, c.logger), "image cache write failed", "image_cache_write_failed",
				slog.String(logging.FieldURL, url),
				logging.Error(err),
				slog.String(logging.FieldImpact, "image will be downloaded again next time"),
			)
		}
		c.memory.Add(url, img)
		return img, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return store.Image{}, res.Err
		}
		return res.Val.(store.Image), nil
	case <-ctx.Done():
		return store.Image{}, ctx.Err()
	}
}

// Local returns the image stored as <local dir>/<pid>.<ext>, trying jpg,
// jpeg, png and webp in order.
func (c *Cache) Local(pid string) (store.Image, bool) {
	pid = strings.TrimSpace(pid)
	if c.localDir == "" || pid == "" || strings.ContainsAny(pid, `/\`) || pid == "." || pid == ".." {
		return store.Image{}, false
	}
	for _, ext := range localExtensions {
		path := filepath.Join(c.localDir, pid+"."+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.logger.Debug("local image unreadable", "path", path, logging.Error(err))
			}
			continue
		}
		contentType := "image/jpeg"
		switch ext {
		case "png":
			contentType = "image/png"
		case "webp":
			contentType = "image/webp"
		}
		return store.Image{URL: "file://" + path, ContentType: contentType, Data: data}, true
	}
	return store.Image{}, false
}

// ForRecord returns the best available image for r without network access:
// the cached copy of its image URL, else the local file named by its pid.
func (c *Cache) ForRecord(ctx context.Context, r record.Record) (store.Image, Origin, bool) {
	if img, origin, ok := c.Cached(ctx, r.ImageURL); ok {
		return img, origin, true
	}
	if record.HasUsablePID(r) {
		if img, ok := c.Local(r.PID); ok {
			return img, OriginLocal, true
		}
	}
	return store.Image{}, "", false
}

// PrefetchResult summarizes a Prefetch run.
type PrefetchResult struct {
	Requested int `json:"requested"`
	Cached    int `json:"cached"`
	Fetched   int `json:"fetched"`
	Failed    int `json:"failed"`
}

// Prefetch ensures every distinct image URL in records is cached. Each URL is
// independent; failures are counted and logged. The returned error is non-nil
// only when ctx ends.
func (c *Cache) Prefetch(ctx context.Context, records []record.Record) (PrefetchResult, error) {
	urls := ActiveURLs(records)
	result := PrefetchResult{Requested: len(urls)}
	var cached, fetched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for url := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, _, ok := c.Cached(gctx, url); ok {
				cached.Add(1)
				return nil
			}
			if _, ok := c.download(gctx, url); ok {
				fetched.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	result.Cached = int(cached.Load())
	result.Fetched = int(fetched.Load())
	result.Failed = int(failed.Load())
	c.logger.Info("image prefetch complete",
		"requested", result.Requested,
		"cached", result.Cached,
		"fetched", result.Fetched,
		"failed", result.Failed,
	)
	return result, err
}

// Prune deletes cached images no record references and returns the count.
func (c *Cache) Prune(ctx context.Context, records []record.Record) (int, error) {
	active := ActiveURLs(records)
	deleted, err := c.blobs.DeleteImagesExcept(ctx, active)
	if err != nil {
		return 0, err
	}
	for _, url := range c.memory.Keys() {
		if _, keep := active[url]; !keep {
			c.memory.Remove(url)
		}
	}
	return deleted, nil
}

// Stats reports the persistent cache size.
func (c *Cache) Stats(ctx context.Context) (store.ImageStats, error) {
	return c.blobs.ImageStats(ctx)
}

// ActiveURLs returns the set of non-blank image URLs in records.
func ActiveURLs(records []record.Record) map[string]struct{} {
	active := make(map[string]struct{})
	for _, r := range records {
		if url := strings.TrimSpace(r.ImageURL); url != "" {
			active[url] = struct{}{}
		}
	}
	return active
}
