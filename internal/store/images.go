package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Image is a cached image blob keyed by its source URL.
type Image struct {
	URL         string
	ContentType string
	Data        []byte
	CachedAt    time.Time
}

// ImageStats summarizes the image cache.
type ImageStats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

// GetImage returns the cached image for url.
func (s *Store) GetImage(ctx context.Context, url string) (Image, bool, error) {
	ctx = ensureContext(ctx)
	var (
		img    Image
		cached string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT url, content_type, data, cached_at FROM image_cache WHERE url = ?", url,
	).Scan(&img.URL, &img.ContentType, &img.Data, &cached)
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, false, nil
	}
	if err != nil {
		return Image{}, false, fmt.Errorf("get image: %w", err)
	}
	img.CachedAt = parseTime(cached)
	return img, true, nil
}

// PutImage stores or replaces the blob for img.URL.
func (s *Store) PutImage(ctx context.Context, img Image) error {
	if strings.TrimSpace(img.URL) == "" {
		return errors.New("put image: url is required")
	}
	cachedAt := img.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO image_cache (url, content_type, data, size, cached_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET content_type = excluded.content_type, data = excluded.data,
		 size = excluded.size, cached_at = excluded.cached_at`,
		img.URL, img.ContentType, img.Data, len(img.Data), cachedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("put image: %w", err)
	}
	return nil
}

// ImageURLs lists every cached URL.
func (s *Store) ImageURLs(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM image_cache ORDER BY url")
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()
	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan image url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// DeleteImagesExcept removes every cached image whose URL is not in active
// and returns the number deleted.
func (s *Store) DeleteImagesExcept(ctx context.Context, active map[string]struct{}) (int, error) {
	ctx = ensureContext(ctx)
	urls, err := s.ImageURLs(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleted := 0
	for _, url := range urls {
		if _, keep := active[url]; keep {
			continue
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM image_cache WHERE url = ?", url); err != nil {
			return 0, fmt.Errorf("delete image %s: %w", url, err)
		}
		deleted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return deleted, nil
}

// ImageStats reports entry count and total bytes.
func (s *Store) ImageStats(ctx context.Context) (ImageStats, error) {
	ctx = ensureContext(ctx)
	var stats ImageStats
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1), COALESCE(SUM(size), 0) FROM image_cache").Scan(&stats.Entries, &stats.Bytes)
	if err != nil {
		return ImageStats{}, fmt.Errorf("image stats: %w", err)
	}
	return stats, nil
}
