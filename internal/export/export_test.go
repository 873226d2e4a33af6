package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"gopkg.in/yaml.v3"

	"scentlog/internal/csvio"
	"scentlog/internal/export"
	"scentlog/internal/imagecache"
	"scentlog/internal/record"
	"scentlog/internal/store"
	"scentlog/internal/testsupport"
)

type fakeSource map[string]store.Image

func (f fakeSource) ForRecord(_ context.Context, r record.Record) (store.Image, imagecache.Origin, bool) {
	img, ok := f[r.PID]
	return img, imagecache.OriginStore, ok
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = body
	}
	return out
}

func TestWriteArchive(t *testing.T) {
	records := []record.Record{
		{Brand: "Acme", Name: "Rose", PID: "1", Rating: 8},
		{Brand: "Acme", Name: "Rose Intense", PID: "1", Rating: 7},
		{Brand: "Bee", Name: "Honey", PID: "2", Rating: 6},
		{Brand: "Cee", Name: "Cedar", PID: "0", Rating: 5},
		{Brand: "Dee", Name: "Dune", PID: "3", Rating: 4},
	}
	source := fakeSource{
		"1": {ContentType: "image/png", Data: testsupport.PNG},
		"2": {ContentType: "image/webp", Data: []byte("webp")},
	}

	var buf bytes.Buffer
	manifest, err := export.Write(context.Background(), &buf, records, source, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if manifest.Records != 5 || manifest.ImagesWritten != 2 || manifest.ImagesMissing != 1 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}

	entries := readArchive(t, buf.Bytes())
	if got := string(entries[export.CSVName]); got != csvio.Serialize(records) {
		t.Fatalf("csv entry mismatch:\n%s", got)
	}
	if !bytes.Equal(entries["images/1.png"], testsupport.PNG) {
		t.Fatal("expected images/1.png to hold the png bytes")
	}
	if string(entries["images/2.webp"]) != "webp" {
		t.Fatal("expected images/2.webp")
	}
	if _, ok := entries["images/0.jpg"]; ok {
		t.Fatal("pid 0 must not be exported")
	}

	var decoded export.Manifest
	if err := yaml.Unmarshal(entries[export.ManifestName], &decoded); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if decoded.ImagesWritten != 2 || len(decoded.Missing) != 1 || decoded.Missing[0] != "3" {
		t.Fatalf("unexpected decoded manifest %+v", decoded)
	}
}

func TestWriteWithoutSource(t *testing.T) {
	var buf bytes.Buffer
	manifest, err := export.Write(context.Background(), &buf, []record.Record{{Brand: "A", Name: "B", PID: "9"}}, nil, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if manifest.ImagesWritten != 0 || manifest.ImagesMissing != 1 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	if len(readArchive(t, buf.Bytes())) != 2 {
		t.Fatal("expected csv and manifest only")
	}
}

func TestWriteEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if _, err := export.Write(context.Background(), &buf, nil, nil, nil); !errors.Is(err, export.ErrEmptyCollection) {
		t.Fatalf("expected ErrEmptyCollection, got %v", err)
	}
}
