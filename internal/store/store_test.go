package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"scentlog/internal/record"
	"scentlog/internal/store"
	"scentlog/internal/testsupport"
)

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if st.Path() != cfg.DatabasePath() {
		t.Fatalf("path = %q", st.Path())
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	again, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
}

func TestOpenRejectsForeignSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scentlog.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 7"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	_ = db.Close()

	st, err := store.OpenPath(path)
	if !errors.Is(err, store.ErrSchemaMismatch) {
		if st != nil {
			_ = st.Close()
		}
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if recs, ok, err := st.LoadCollection(ctx); err != nil || ok || recs != nil {
		t.Fatalf("empty store LoadCollection = (%v, %v, %v)", recs, ok, err)
	}

	rose := record.Record{Brand: "Acme", Name: "Rose", PID: "5", Rating: 8.5, Price: 12, HasPrice: true}
	rose.SetText("Market Segment", "Niche")
	musk := record.Record{Brand: "Zen", Name: "Musk"}
	musk.SetText(record.FieldPID, "")
	if err := st.SaveCollection(ctx, []record.Record{rose, musk}); err != nil {
		t.Fatalf("SaveCollection: %v", err)
	}

	got, ok, err := st.LoadCollection(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadCollection = (%v, %v)", ok, err)
	}
	if len(got) != 2 || got[0].Rating != 8.5 || !got[1].Has(record.FieldPID) {
		t.Fatalf("unexpected collection %+v", got)
	}
	if seg, _ := got[0].Extra("Market Segment"); seg != "Niche" {
		t.Fatalf("segment = %q", seg)
	}

	info, ok, err := st.SlotInfo(ctx, store.CollectionSlot)
	if err != nil || !ok || info.RecordCount != 2 || info.UpdatedAt.IsZero() {
		t.Fatalf("SlotInfo = (%+v, %v, %v)", info, ok, err)
	}

	if err := st.SaveCollection(ctx, nil); err != nil {
		t.Fatalf("SaveCollection(nil): %v", err)
	}
	if _, ok, _ := st.LoadCollection(ctx); ok {
		t.Fatal("empty slot should read as absent")
	}
}

func TestImageCachePrune(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, url := range []string{"http://a/1.png", "http://a/2.png", "http://a/3.png"} {
		if err := st.PutImage(ctx, store.Image{URL: url, ContentType: "image/png", Data: testsupport.PNG}); err != nil {
			t.Fatalf("PutImage: %v", err)
		}
	}
	img, ok, err := st.GetImage(ctx, "http://a/2.png")
	if err != nil || !ok || img.ContentType != "image/png" || len(img.Data) != len(testsupport.PNG) {
		t.Fatalf("GetImage = (%+v, %v, %v)", img, ok, err)
	}

	deleted, err := st.DeleteImagesExcept(ctx, map[string]struct{}{"http://a/2.png": {}})
	if err != nil || deleted != 2 {
		t.Fatalf("DeleteImagesExcept = (%d, %v)", deleted, err)
	}
	stats, err := st.ImageStats(ctx)
	if err != nil || stats.Entries != 1 || stats.Bytes != int64(len(testsupport.PNG)) {
		t.Fatalf("ImageStats = (%+v, %v)", stats, err)
	}
	if _, ok, _ := st.GetImage(ctx, "http://a/1.png"); ok {
		t.Fatal("pruned image still present")
	}
	if err := st.PutImage(ctx, store.Image{}); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestJournalNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{"bootstrap", "merge", "overwrite"} {
		if _, err := st.AppendJournal(ctx, store.JournalEntry{Kind: kind, Added: i, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("AppendJournal: %v", err)
		}
	}
	entries, err := st.ListJournal(ctx, 2)
	if err != nil {
		t.Fatalf("ListJournal: %v", err)
	}
	if len(entries) != 2 || entries[0].Kind != "overwrite" || entries[1].Kind != "merge" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].ID == "" || !entries[0].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected entry metadata %+v", entries[0])
	}
	all, _ := st.ListJournal(ctx, 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
}

func TestWithWriteLockExcludesSecondWriter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	second := testsupport.MustOpenStore(t, cfg)
	second.SetLockWait(100 * time.Millisecond)
	ctx := context.Background()

	err := first.WithWriteLock(ctx, func(ctx context.Context) error {
		inner := second.WithWriteLock(ctx, func(context.Context) error { return nil })
		if !errors.Is(inner, store.ErrLocked) {
			t.Fatalf("expected ErrLocked, got %v", inner)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithWriteLock: %v", err)
	}

	ran := false
	if err := second.WithWriteLock(ctx, func(context.Context) error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("lock not released: ran=%v err=%v", ran, err)
	}
}
