package imagecache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"scentlog/internal/imagecache"
	"scentlog/internal/record"
	"scentlog/internal/store"
	"scentlog/internal/testsupport"
)

func newImageServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/rose.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(testsupport.PNG)
		case "/sniffed":
			_, _ = w.Write(testsupport.PNG)
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>nope</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCache(t *testing.T, fetcher imagecache.Fetcher, localDir string) *imagecache.Cache {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	cache, err := imagecache.New(st, imagecache.Options{
		Fetcher:       fetcher,
		LocalDir:      localDir,
		Concurrency:   2,
		MemoryEntries: 8,
	})
	if err != nil {
		t.Fatalf("imagecache.New: %v", err)
	}
	return cache
}

func TestGetFetchesOnceThenServesFromMemory(t *testing.T) {
	var hits atomic.Int64
	srv := newImageServer(t, &hits)
	cache := newCache(t, imagecache.NewHTTPFetcher(time.Second, "scentlog/test"), "")
	ctx := context.Background()

	img, origin, ok := cache.Get(ctx, srv.URL+"/rose.png")
	if !ok || origin != imagecache.OriginNetwork {
		t.Fatalf("first get = %v %q, want network hit", ok, origin)
	}
	if img.ContentType != "image/png" || len(img.Data) != len(testsupport.PNG) {
		t.Fatalf("unexpected image %q (%d bytes)", img.ContentType, len(img.Data))
	}

	_, origin, ok = cache.Get(ctx, srv.URL+"/rose.png")
	if !ok || origin != imagecache.OriginMemory {
		t.Fatalf("second get = %v %q, want memory hit", ok, origin)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", hits.Load())
	}
}

func TestGetSniffsContentTypeAndRejectsNonImages(t *testing.T) {
	var hits atomic.Int64
	srv := newImageServer(t, &hits)
	cache := newCache(t, imagecache.NewHTTPFetcher(time.Second, ""), "")
	ctx := context.Background()

	img, _, ok := cache.Get(ctx, srv.URL+"/sniffed")
	if !ok || img.ContentType != "image/png" {
		t.Fatalf("expected sniffed png, got %v %q", ok, img.ContentType)
	}
	if _, _, ok := cache.Get(ctx, srv.URL+"/page.html"); ok {
		t.Fatal("expected html response to be rejected")
	}
	if _, _, ok := cache.Get(ctx, srv.URL+"/missing.jpg"); ok {
		t.Fatal("expected 404 to be a miss")
	}
	if _, _, ok := cache.Get(ctx, "   "); ok {
		t.Fatal("expected blank url to be a miss")
	}
}

func TestCachedNeverTouchesNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := newImageServer(t, &hits)
	cache := newCache(t, imagecache.NewHTTPFetcher(time.Second, ""), "")

	if _, _, ok := cache.Cached(context.Background(), srv.URL+"/rose.png"); ok {
		t.Fatal("expected miss before fetch")
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no requests, got %d", hits.Load())
	}
}

func TestLocalLookupOrder(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "42.png"), testsupport.PNG)
	testsupport.WriteFile(t, filepath.Join(dir, "42.webp"), []byte("webp"))
	cache := newCache(t, nil, dir)

	img, ok := cache.Local("42")
	if !ok || img.ContentType != "image/png" {
		t.Fatalf("expected png local image, got %v %q", ok, img.ContentType)
	}
	if _, ok := cache.Local("../42"); ok {
		t.Fatal("expected path-like pid to be rejected")
	}
	if _, ok := cache.Local("7"); ok {
		t.Fatal("expected miss for unknown pid")
	}

	rec := record.Record{Brand: "Acme", Name: "Rose", PID: "42"}
	if _, origin, ok := cache.ForRecord(context.Background(), rec); !ok || origin != imagecache.OriginLocal {
		t.Fatalf("ForRecord = %v %q, want local", ok, origin)
	}
}

func TestPrefetchCountsAndPrune(t *testing.T) {
	var hits atomic.Int64
	srv := newImageServer(t, &hits)
	cache := newCache(t, imagecache.NewHTTPFetcher(time.Second, ""), "")
	ctx := context.Background()

	records := []record.Record{
		{Brand: "A", Name: "One", ImageURL: srv.URL + "/rose.png"},
		{Brand: "A", Name: "Two", ImageURL: srv.URL + "/rose.png"},
		{Brand: "B", Name: "Three", ImageURL: srv.URL + "/sniffed"},
		{Brand: "C", Name: "Four", ImageURL: srv.URL + "/missing.jpg"},
		{Brand: "D", Name: "Five"},
	}
	result, err := cache.Prefetch(ctx, records)
	if err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if result.Requested != 3 || result.Fetched != 2 || result.Failed != 1 || result.Cached != 0 {
		t.Fatalf("unexpected first prefetch %+v", result)
	}

	again, err := cache.Prefetch(ctx, records)
	if err != nil {
		t.Fatalf("Prefetch again: %v", err)
	}
	if again.Cached != 2 || again.Fetched != 0 || again.Failed != 1 {
		t.Fatalf("unexpected second prefetch %+v", again)
	}

	deleted, err := cache.Prune(ctx, records[:1])
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 pruned image, got %d", deleted)
	}
	stats, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 {
		t.Fatalf("expected 1 entry after prune, got %d", stats.Entries)
	}
	if _, _, ok := cache.Cached(ctx, srv.URL+"/sniffed"); ok {
		t.Fatal("expected pruned image to be gone from memory too")
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"image/png":  "png",
		"image/webp": "webp",
		"image/jpeg": "jpg",
		"":           "jpg",
	}
	for in, want := range cases {
		if got := imagecache.Extension(in); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}

type slowFetcher struct {
	calls atomic.Int64
	delay time.Duration
}

func (f *slowFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	f.calls.Add(1)
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
	return testsupport.PNG, "image/png", nil
}

func TestConcurrentGetFetchesOnce(t *testing.T) {
	fetcher := &slowFetcher{delay: 50 * time.Millisecond}
	cache := newCache(t, fetcher, "")
	ctx := context.Background()

	const getters = 8
	var wg sync.WaitGroup
	var hits atomic.Int64
	for range getters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, ok := cache.Get(ctx, "http://images.test/a.png"); ok {
				hits.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := fetcher.calls.Load(); got != 1 {
		t.Fatalf("expected 1 fetch for %d getters, got %d", getters, got)
	}
	if hits.Load() != getters {
		t.Fatalf("expected every getter to receive the image, got %d", hits.Load())
	}
}

func TestGetCancelledWaiterReturnsEarly(t *testing.T) {
	fetcher := &slowFetcher{delay: 300 * time.Millisecond}
	cache := newCache(t, fetcher, "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		cache.Get(context.Background(), "http://images.test/slow.png")
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, _, ok := cache.Get(ctx, "http://images.test/slow.png"); ok {
		t.Fatal("expected cancelled waiter to miss")
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("cancelled waiter blocked for %v", elapsed)
	}

	<-done
	if _, origin, ok := cache.Cached(context.Background(), "http://images.test/slow.png"); !ok || origin != imagecache.OriginMemory {
		t.Fatalf("shared fetch not cached: %v %q", ok, origin)
	}
	if got := fetcher.calls.Load(); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}
}

type countingBlobs struct {
	imagecache.BlobStore
	reads atomic.Int64
}

func (c *countingBlobs) GetImage(ctx context.Context, url string) (store.Image, bool, error) {
	c.reads.Add(1)
	return c.BlobStore.GetImage(ctx, url)
}

func TestPrefetchReadsStoreOncePerMiss(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blobs := &countingBlobs{BlobStore: testsupport.MustOpenStore(t, cfg)}
	cache, err := imagecache.New(blobs, imagecache.Options{Fetcher: &slowFetcher{}})
	if err != nil {
		t.Fatalf("imagecache.New: %v", err)
	}

	records := []record.Record{
		{Brand: "Acme", Name: "Rose", ImageURL: "http://images.test/rose.png"},
		{Brand: "Bee", Name: "Honey", ImageURL: "http://images.test/honey.png"},
	}
	result, err := cache.Prefetch(context.Background(), records)
	if err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if result.Fetched != 2 {
		t.Fatalf("unexpected prefetch result %+v", result)
	}
	if got := blobs.reads.Load(); got != 2 {
		t.Fatalf("expected 2 store reads for 2 misses, got %d", got)
	}
}
