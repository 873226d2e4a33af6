package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const maxLineBytes = 1024 * 1024

// DefaultPollInterval is how often Follow checks for appended lines.
const DefaultPollInterval = 250 * time.Millisecond

// Chunk is a batch of lines together with the offset just past them.
type Chunk struct {
	Lines  []string
	Offset int64
}

// Last returns up to limit trailing lines of path. A missing file yields an
// empty chunk at offset zero.
func Last(path string, limit int) (Chunk, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Chunk{}, fmt.Errorf("seek log file: %w", err)
		}
		return Chunk{Offset: offset}, nil
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	offset, err := scanLines(file, func(line string) {
		ring[idx] = line
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return Chunk{}, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return Chunk{Lines: lines, Offset: offset}, nil
}

// Since returns the lines appended after offset. An offset beyond the end of
// the file (after truncation or rotation) restarts from the beginning.
func Since(path string, offset int64) (Chunk, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Chunk{}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 {
		offset = info.Size()
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	consumed, err := scanLines(file, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Lines: lines, Offset: offset + consumed}, nil
}

// Follow emits lines appended after offset, polling every interval until ctx
// is done. It returns nil on cancellation.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		chunk, err := Since(path, offset)
		if err != nil {
			return err
		}
		for _, line := range chunk.Lines {
			emit(line)
		}
		offset = chunk.Offset

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func openLog(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// scanLines feeds complete lines to fn and returns the bytes consumed. A
// trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(line))
			text := line[:len(line)-1]
			if n := len(text); n > 0 && text[n-1] == '\r' {
				text = text[:n-1]
			}
			if len(text) > maxLineBytes {
				text = text[:maxLineBytes]
			}
			fn(text)
			continue
		}
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		return consumed, fmt.Errorf("read log file: %w", err)
	}
}
