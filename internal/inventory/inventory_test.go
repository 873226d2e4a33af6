package inventory_test

import (
	"reflect"
	"testing"

	"scentlog/internal/csvio"
	"scentlog/internal/inventory"
	"scentlog/internal/record"
)

func sample() []record.Record {
	return csvio.Parse("Brand,Name,PID,Rating,Price,Market Segment\n" +
		"Acme,Rose,1,0,,Niche\n" +
		"Acme,Iris,2,7,15,\n" +
		"Zen,,3,5,,designer\n" +
		",Musk,0,,,Niche\n").Records
}

func TestIsMissing(t *testing.T) {
	recs := sample()
	if inventory.IsMissing(recs[0], record.FieldRating) {
		t.Fatal("numeric zero must not count as missing")
	}
	if !inventory.IsMissing(recs[0], record.FieldPrice) {
		t.Fatal("absent price should be missing")
	}
	if !inventory.IsMissing(recs[1], "Market Segment") {
		t.Fatal("blank string should be missing")
	}
	if !inventory.IsMissing(recs[0], "Notes") {
		t.Fatal("unknown field should be missing")
	}
}

func TestNeedingAttentionHonoursScope(t *testing.T) {
	recs := sample()
	fields := inventory.Fields(recs)

	all := inventory.NeedingAttention(recs, inventory.Scope(fields, ""))
	if len(all) != 4 {
		t.Fatalf("expected every record to need attention, got %d", len(all))
	}

	names := inventory.NeedingAttention(recs, inventory.Scope(fields, record.FieldName))
	if len(names) != 1 || names[0].Index != 2 || names[0].Key != "3" {
		t.Fatalf("unexpected name scope result %+v", names)
	}
	if !reflect.DeepEqual(names[0].Missing, []string{record.FieldName}) {
		t.Fatalf("missing = %v", names[0].Missing)
	}

	brands := inventory.NeedingAttention(recs, []string{record.FieldBrand})
	if len(brands) != 1 || brands[0].Key != "unknown|Musk" {
		t.Fatalf("unexpected brand scope result %+v", brands)
	}
}

func TestEntriesSortEmptyFirstThenLabel(t *testing.T) {
	got := inventory.Entries(sample(), "Market Segment")
	want := []inventory.Entry{
		{Key: inventory.EmptyKey, Label: inventory.EmptyLabel, Count: 1},
		{Key: "designer", Label: "designer", Count: 1},
		{Key: "Niche", Label: "Niche", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %+v, want %+v", got, want)
	}
}

func TestStageBulkAndApply(t *testing.T) {
	recs := sample()
	edits := inventory.NewEdits()

	if n := edits.StageBulk(recs, "Market Segment", inventory.EmptyKey, "   "); n != 0 {
		t.Fatalf("blank bulk value staged %d records", n)
	}
	if n := edits.StageBulk(recs, "Market Segment", "Niche", "Niche Luxury"); n != 2 {
		t.Fatalf("staged %d, want 2", n)
	}
	edits.Stage("2", record.FieldRating, "not a number")
	edits.Stage("2", record.FieldPrice, "$20.50")

	out, stats := edits.Apply(recs)
	if stats.Records != 3 || stats.Fields != 3 || stats.Ignored != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if seg, _ := out[0].Extra("Market Segment"); seg != "Niche Luxury" {
		t.Fatalf("segment = %q", seg)
	}
	if seg, _ := out[3].Extra("Market Segment"); seg != "Niche Luxury" {
		t.Fatalf("segment = %q", seg)
	}
	if out[1].Rating != 7 {
		t.Fatalf("failed numeric edit must be a no-op, rating = %v", out[1].Rating)
	}
	if !out[1].HasPrice || out[1].Price != 20.5 {
		t.Fatalf("price = %v", out[1].Price)
	}
	if seg, _ := recs[0].Extra("Market Segment"); seg != "Niche" {
		t.Fatal("apply must not mutate its input")
	}
	if !reflect.DeepEqual(out[2], recs[2]) {
		t.Fatal("untouched record changed")
	}
}

func TestNormalize(t *testing.T) {
	if _, ok := inventory.Normalize(record.FieldBrand, "  "); ok {
		t.Fatal("blank text should normalize to nothing")
	}
	v, ok := inventory.Normalize(record.FieldBrand, "  Acme ")
	if !ok || v.String() != "Acme" {
		t.Fatalf("Normalize = (%v, %v)", v, ok)
	}
	v, ok = inventory.Normalize(record.FieldRating, " 8.5 ")
	if f, isNum := v.Float(); !ok || !isNum || f != 8.5 {
		t.Fatalf("rating normalize = (%v, %v)", v, ok)
	}
	if _, ok := inventory.Normalize(record.FieldPrice, "free"); ok {
		t.Fatal("uncoercible price should normalize to nothing")
	}
}
