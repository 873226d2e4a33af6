// Package export writes a collection archive: the serialized CSV, one image
// per identifiable perfume, and a YAML manifest.
package export

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"scentlog/internal/csvio"
	"scentlog/internal/imagecache"
	"scentlog/internal/logging"
	"scentlog/internal/record"
	"scentlog/internal/store"
)

const (
	CSVName      = "constants.csv"
	ManifestName = "manifest.yaml"
	ImagesDir    = "images"
)

// ErrEmptyCollection is returned when there is nothing to export.
var ErrEmptyCollection = errors.New("export: collection is empty")

// ImageSource resolves the image for a record without network access.
type ImageSource interface {
	ForRecord(ctx context.Context, r record.Record) (store.Image, imagecache.Origin, bool)
}

// Manifest describes an archive.
type Manifest struct {
	GeneratedAt   time.Time `yaml:"generated_at"`
	Records       int       `yaml:"records"`
	ImagesWritten int       `yaml:"images_written"`
	ImagesMissing int       `yaml:"images_missing"`
	Images        []string  `yaml:"images,omitempty"`
	Missing       []string  `yaml:"missing,omitempty"`
}

// Write streams the archive for records to w. A nil source exports the CSV
// only. Image failures downgrade to a manifest entry.
func Write(ctx context.Context, w io.Writer, records []record.Record, source ImageSource, logger *slog.Logger) (Manifest, error) {
	if len(records) == 0 {
		return Manifest{}, ErrEmptyCollection
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "export"))

	manifest := Manifest{GeneratedAt: time.Now().UTC(), Records: len(records)}
	zw := zip.NewWriter(w)

	if err := writeEntry(zw, CSVName, []byte(csvio.Serialize(records))); err != nil {
		return Manifest{}, err
	}

	written := make(map[string]struct{})
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		if !record.HasUsablePID(r) {
			continue
		}
		pid := strings.TrimSpace(r.PID)
		if strings.ContainsAny(pid, `/\`) {
			logger.Debug("skipping image with path-like pid", slog.String("pid", pid))
			continue
		}
		if _, dup := written[pid]; dup {
			continue
		}
		if source == nil {
			manifest.ImagesMissing++
			manifest.Missing = append(manifest.Missing, pid)
			continue
		}
		img, origin, ok := source.ForRecord(ctx, r)
		if !ok {
			manifest.ImagesMissing++
			manifest.Missing = append(manifest.Missing, pid)
			continue
		}
		name := path.Join(ImagesDir, pid+"."+imagecache.Extension(img.ContentType))
		if err := writeEntry(zw, name, img.Data); err != nil {
			return Manifest{}, err
		}
		written[pid] = struct{}{}
		manifest.ImagesWritten++
		manifest.Images = append(manifest.Images, name)
		logger.Debug("image exported", slog.String("entry", name), slog.String("origin", string(origin)))
	}

	body, err := yaml.Marshal(manifest)
	if err != nil {
		return Manifest{}, fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(zw, ManifestName, body); err != nil {
		return Manifest{}, err
	}
	if err := zw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("finalize archive: %w", err)
	}

	logger.Info("export complete",
		slog.Int("records", manifest.Records),
		slog.Int("images_written", manifest.ImagesWritten),
		slog.Int("images_missing", manifest.ImagesMissing),
	)
	return manifest, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
