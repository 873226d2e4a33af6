package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"scentlog/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scentlog.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	chunk, err := logs.Last(path, 2)
	if err != nil {
		t.Fatalf("Last returned error: %v", err)
	}
	if len(chunk.Lines) != 2 || chunk.Lines[0] != "b" || chunk.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", chunk.Lines)
	}
	if chunk.Offset != 6 {
		t.Fatalf("offset = %d, want 6", chunk.Offset)
	}

	chunk, err = logs.Last(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Lines) != 3 {
		t.Fatalf("expected every line, got %#v", chunk.Lines)
	}
}

func TestLastMissingFile(t *testing.T) {
	chunk, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatalf("Last returned error: %v", err)
	}
	if len(chunk.Lines) != 0 || chunk.Offset != 0 {
		t.Fatalf("expected empty chunk, got %+v", chunk)
	}
}

func TestSinceHoldsPartialLine(t *testing.T) {
	path := writeLog(t, "one\ntw")

	chunk, err := logs.Since(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "one" || chunk.Offset != 4 {
		t.Fatalf("unexpected chunk %+v", chunk)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("o\n")
	_ = f.Close()

	chunk, err = logs.Since(path, chunk.Offset)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "two" {
		t.Fatalf("unexpected lines after append: %#v", chunk.Lines)
	}

	chunk, err = logs.Since(path, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Lines) != 2 {
		t.Fatalf("expected restart after truncation, got %#v", chunk.Lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	initial, err := logs.Last(path, 1)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var mu sync.Mutex
	var got []string
	seen := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, initial.Offset, 20*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
			select {
			case seen <- struct{}{}:
			default:
			}
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-seen:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit appended line")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected follow lines: %#v", got)
	}
}
