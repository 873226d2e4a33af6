package report_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"scentlog/internal/record"
	"scentlog/internal/report"
)

func sampleRecords() []record.Record {
	seg := func(r record.Record, v string) record.Record {
		r.SetText("Market Segment", v)
		return r
	}
	return []record.Record{
		seg(record.Record{Brand: "A", Name: "One", Rating: 8, Price: 10, HasPrice: true}, "Niche"),
		seg(record.Record{Brand: "A", Name: "Two", Rating: 8.1, Price: 100, HasPrice: true}, "Niche"),
		seg(record.Record{Brand: "B", Name: "Three", Rating: 6}, "Designer"),
		seg(record.Record{Brand: "C", Name: "Four", Rating: 9.5, Price: 0, HasPrice: true}, ""),
	}
}

func TestComputeSummary(t *testing.T) {
	stats := report.Compute(sampleRecords())
	if stats.Count != 4 {
		t.Fatalf("Count = %d", stats.Count)
	}
	if math.Abs(stats.Mean-7.9) > 1e-9 {
		t.Fatalf("Mean = %v", stats.Mean)
	}
	if math.Abs(stats.Median-8.05) > 1e-9 {
		t.Fatalf("Median = %v", stats.Median)
	}
	if len(stats.Histogram) != 21 {
		t.Fatalf("expected 21 bins, got %d", len(stats.Histogram))
	}
	eight := stats.Histogram[16]
	if eight.Rating != 8 || eight.Count != 2 || eight.Cumulative != 3 {
		t.Fatalf("unexpected bin 8: %+v", eight)
	}
	if stats.Histogram[0].Cumulative != 4 {
		t.Fatalf("expected cumulative 4 at 0, got %d", stats.Histogram[0].Cumulative)
	}
}

func TestComputePriceTrend(t *testing.T) {
	stats := report.Compute(sampleRecords())
	if stats.Price == nil {
		t.Fatal("expected price trend")
	}
	if stats.Price.Points != 2 {
		t.Fatalf("expected 2 priced points, got %d", stats.Price.Points)
	}
	if got := stats.Price.At(10); math.Abs(got-8) > 1e-9 {
		t.Fatalf("trend at 10 = %v", got)
	}
	if got := stats.Price.At(100); math.Abs(got-8.1) > 1e-9 {
		t.Fatalf("trend at 100 = %v", got)
	}

	single := report.Compute(sampleRecords()[:1])
	if single.Price != nil {
		t.Fatal("expected no trend with one priced perfume")
	}
}

func TestComputeSegments(t *testing.T) {
	stats := report.Compute(sampleRecords())
	if stats.SegmentField != "Market Segment" {
		t.Fatalf("SegmentField = %q", stats.SegmentField)
	}
	if len(stats.Segments) != 3 || stats.Segments[0].Label != "(empty)" {
		t.Fatalf("unexpected segments %+v", stats.Segments)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteMarkdown(&buf, "Collection Report", report.Compute(sampleRecords())); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"# Collection Report", "## Rating Distribution", "## Price vs Rating", "```mermaid", "Niche"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := report.WriteMarkdown(&buf, "Empty", report.Compute(nil)); err != nil {
		t.Fatalf("WriteMarkdown empty: %v", err)
	}
	if !strings.Contains(buf.String(), "empty") {
		t.Fatalf("expected empty note, got %s", buf.String())
	}
}
