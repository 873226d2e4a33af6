package csvio_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"scentlog/internal/csvio"
	"scentlog/internal/record"
)

func TestParseNormalizesHeadersAndCoercesNumbers(t *testing.T) {
	text := "Brand,NAME,pid,Image URL,page url,Time Rated,Rating,Retail Price (USD),Market Segment\n" +
		`Acme, Rose ,5,http://img/5.jpg,http://page/5,"Jan 5, 2024",abc,"$1,234.50",Niche` + "\n"

	result := csvio.Parse(text)
	wantHeader := []string{"brand", "name", "pid", "imageUrl", "pageUrl", "timeRated", "rating", "price", "Market Segment"}
	if !reflect.DeepEqual(result.Header, wantHeader) {
		t.Fatalf("header = %v, want %v", result.Header, wantHeader)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d (rejected %v)", len(result.Records), result.Rejected)
	}
	r := result.Records[0]
	if r.Name != "Rose" || r.TimeRated != "Jan 5, 2024" {
		t.Fatalf("unexpected strings %+v", r)
	}
	if !r.Has(record.FieldRating) || r.Rating != 0 {
		t.Fatalf("rating should default to 0, got %v", r.Rating)
	}
	if !r.HasPrice || r.Price != 1234.5 {
		t.Fatalf("price = %v (has=%v), want 1234.5", r.Price, r.HasPrice)
	}
	if seg, _ := r.Extra("Market Segment"); seg != "Niche" {
		t.Fatalf("segment = %q", seg)
	}
}

func TestParseOmitsUncoerciblePrice(t *testing.T) {
	result := csvio.Parse("Brand,Name,Price\nA,B,n/a\n")
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if result.Records[0].Has(record.FieldPrice) {
		t.Fatal("price should be omitted")
	}
}

func TestParseKeepsDuplicatesAndSkipsBlankLines(t *testing.T) {
	result := csvio.Parse("\n\nBrand,Name,PID,Rating\nAcme,Rose,5,8.5\n   \nAcme,Rose,5,9.0\n")
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if result.Records[1].Rating != 9 {
		t.Fatalf("unexpected rating %v", result.Records[1].Rating)
	}
}

func TestParsePreservesQuotedNewlinesAndQuotes(t *testing.T) {
	text := "Brand,Name,Notes\n" + `Acme,"Rose ""Noir""","line one` + "\n" + `line two"` + "\n"
	result := csvio.Parse(text)
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	r := result.Records[0]
	if r.Name != `Rose "Noir"` {
		t.Fatalf("name = %q", r.Name)
	}
	if notes, _ := r.Extra("Notes"); notes != "line one\nline two" {
		t.Fatalf("notes = %q", notes)
	}
}

func TestParseRejectsRowsWithoutAlignedColumns(t *testing.T) {
	result := csvio.Parse(",Brand,Name\nlonely\nx,A,B\n")
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Line != 2 {
		t.Fatalf("unexpected rejections %v", result.Rejected)
	}
}

func TestParseShortRowsAssignOnlyAlignedCells(t *testing.T) {
	result := csvio.Parse("Brand,Name,Rating\nAcme\n")
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
	r := result.Records[0]
	if r.Brand != "Acme" || r.Has(record.FieldName) || r.Has(record.FieldRating) {
		t.Fatalf("unexpected record %+v", r)
	}
}

func TestParseKeepsBlankHeaderColumn(t *testing.T) {
	result := csvio.Parse("Brand,,Name\nA,X,B")
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %+v", result)
	}
	r := result.Records[0]
	if v, ok := r.Extra(""); !ok || v != "X" {
		t.Fatalf("blank header column = %q, %v; want X", v, ok)
	}
	want := []string{record.FieldBrand, record.FieldName, ""}
	if got := r.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}

	out := csvio.Serialize(result.Records)
	if out != "Brand,Name,\nA,B,X" {
		t.Fatalf("serialized %q", out)
	}
}

func TestParseEmptyInput(t *testing.T) {
	result := csvio.Parse("  \n\n")
	if len(result.Records) != 0 || len(result.Header) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestParseReaderDecodesWindows1252AndBOM(t *testing.T) {
	input := []byte("Brand,Name\nCaf\xe9,Eau\n")
	result, err := csvio.ParseReader(bytes.NewReader(input), csvio.Options{Encoding: csvio.EncodingWindows1252})
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if result.Records[0].Brand != "Café" {
		t.Fatalf("brand = %q", result.Records[0].Brand)
	}

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Brand,Name\nA,B\n")...)
	result, err = csvio.ParseReader(bytes.NewReader(bom), csvio.Options{})
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if result.Header[0] != record.FieldBrand {
		t.Fatalf("BOM not stripped: %q", result.Header[0])
	}
}

func TestParseReaderRejectsUnknownEncoding(t *testing.T) {
	if _, err := csvio.ParseReader(strings.NewReader("a"), csvio.Options{Encoding: "klingon"}); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestEscape(t *testing.T) {
	tests := map[string]string{
		"plain":      "plain",
		"a,b":        `"a,b"`,
		`say "hi"`:   `"say ""hi"""`,
		"two\nlines": "\"two\nlines\"",
		" padded ":   " padded ",
	}
	for in, want := range tests {
		if got := csvio.Escape(in); got != want {
			t.Fatalf("Escape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSerializeOrdersColumnsAndUsesLabels(t *testing.T) {
	a := record.Record{Brand: "Acme", Name: "Rose", Rating: 8.5, Price: 40, HasPrice: true}
	a.SetText("zeta", "z")
	b := record.Record{Brand: "B, Inc", Name: "Musk", PID: "7"}
	b.SetText("Market Segment", "Niche")

	got := csvio.Serialize([]record.Record{a, b})
	want := "Brand,Name,PID,Rating,Price,Market Segment,zeta\n" +
		"Acme,Rose,,8.5,40,,z\n" +
		`"B, Inc",Musk,7,,,Niche,`
	if got != want {
		t.Fatalf("Serialize =\n%s\nwant\n%s", got, want)
	}
	if csvio.Serialize(nil) != "" {
		t.Fatal("empty collection should serialize to empty string")
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	text := "Brand,Name,PID,Image URL,Page URL,Time Rated,Rating,Price\n" +
		`Acme,Rose,5,http://i/5.jpg,http://p/5,"Jan 5, 2024",8.5,1234.5` + "\n" +
		`"Quote ""Co""",Musk,0,,,yesterday,0,` + "\n" +
		"Zen,\"Multi\nLine\",,,,,10,12\n"
	original := csvio.Parse(text).Records
	if len(original) != 3 {
		t.Fatalf("expected 3 records, got %d", len(original))
	}

	again := csvio.Parse(csvio.Serialize(original)).Records
	if !reflect.DeepEqual(again, original) {
		t.Fatalf("round trip mismatch:\n%#v\n%#v", again, original)
	}
}

func TestTableValue(t *testing.T) {
	table, err := csvio.ReadTable(strings.NewReader("Brand,Rating\nA,\"8,5\"\n"))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	v, ok := table.Value(table.Rows[0], record.FieldRating)
	if !ok || v != "8,5" {
		t.Fatalf("Value = (%q, %v)", v, ok)
	}
	if _, ok := table.Value(table.Rows[0], record.FieldPID); ok {
		t.Fatal("pid column should be absent")
	}
}
