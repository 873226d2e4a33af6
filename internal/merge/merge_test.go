package merge_test

import (
	"reflect"
	"testing"

	"scentlog/internal/csvio"
	"scentlog/internal/merge"
	"scentlog/internal/record"
)

func TestMergeCollapsesRowsWithinOneBatch(t *testing.T) {
	parsed := csvio.Parse("Brand,Name,PID,Rating\nAcme,Rose,5,8.5\nAcme,Rose,5,9.0\n")
	res := merge.Merge(nil, parsed.Records)

	if res.Added != 1 || res.Updated != 0 {
		t.Fatalf("added=%d updated=%d, want 1 and 0", res.Added, res.Updated)
	}
	if res.Collapsed != 1 {
		t.Fatalf("collapsed=%d, want 1", res.Collapsed)
	}
	if len(res.Records) != 1 || res.Records[0].Rating != 9 {
		t.Fatalf("unexpected records %+v", res.Records)
	}
}

func TestMergeUpdatesExistingAndPreservesFields(t *testing.T) {
	existing := []record.Record{
		{Brand: "Acme", Name: "Rose", PID: "5", Rating: 7, Price: 30, HasPrice: true},
		{Brand: "Zen", Name: "Musk", Rating: 6},
	}
	incoming := []record.Record{
		{Brand: "Other", Name: "Iris", Rating: 4},
		{PID: "5", Rating: 9},
		{Brand: "Zen", Name: "Musk", Rating: 8},
		{Rating: 3},
	}

	res := merge.Merge(existing, incoming)
	if res.Added != 1 || res.Updated != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	want := []record.Record{
		{Brand: "Acme", Name: "Rose", PID: "5", Rating: 9, Price: 30, HasPrice: true},
		{Brand: "Zen", Name: "Musk", Rating: 8},
		{Brand: "Other", Name: "Iris", Rating: 4},
	}
	if !reflect.DeepEqual(res.Records, want) {
		t.Fatalf("records = %+v\nwant %+v", res.Records, want)
	}
	if existing[0].Rating != 7 {
		t.Fatal("merge must not mutate its inputs")
	}
}

func TestMergeExistingDuplicatesAreLastWins(t *testing.T) {
	existing := []record.Record{
		{Brand: "A", Name: "One", PID: "1", Rating: 1},
		{Brand: "B", Name: "Two", Rating: 2},
		{Brand: "A", Name: "One again", PID: "1", Rating: 5},
		{Name: "orphan"},
	}
	res := merge.Merge(existing, nil)
	if len(res.Records) != 2 || res.Dropped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Records[0].Name != "One again" || res.Records[1].Name != "Two" {
		t.Fatalf("unexpected order %+v", res.Records)
	}
}

func TestMergeWithItselfIsIdempotent(t *testing.T) {
	collection := csvio.Parse("Brand,Name,PID,Rating,Price,Notes\n" +
		"Acme,Rose,5,8.5,10,a\n" +
		"Zen,Musk,0,7,,b\n" +
		"Iris,Blue,,6,20,\n").Records

	res := merge.Merge(collection, collection)
	if res.Added != 0 || res.Updated != len(collection) {
		t.Fatalf("added=%d updated=%d", res.Added, res.Updated)
	}
	if !reflect.DeepEqual(res.Records, collection) {
		t.Fatalf("collection changed:\n%+v\n%+v", res.Records, collection)
	}
}

func TestOverwriteFiltersInvalidAndKeepsDuplicates(t *testing.T) {
	incoming := []record.Record{
		{Brand: "A", Name: "One", PID: "1"},
		{Brand: "A"},
		{Brand: "A", Name: "One", PID: "1", Rating: 4},
		{Name: "No brand"},
	}
	res := merge.Overwrite(incoming)
	if len(res.Records) != 2 || res.Added != 2 || res.Skipped != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Records[1].Rating != 4 {
		t.Fatalf("order not preserved: %+v", res.Records)
	}
}

func TestApplyDispatchesByMode(t *testing.T) {
	existing := []record.Record{{Brand: "Old", Name: "Entry"}}
	incoming := []record.Record{{Brand: "New", Name: "Entry"}}

	if got := merge.Apply(merge.ModeOverwrite, existing, incoming); len(got.Records) != 1 || got.Records[0].Brand != "New" {
		t.Fatalf("overwrite result %+v", got)
	}
	if got := merge.Apply(merge.ModeMerge, existing, incoming); len(got.Records) != 2 {
		t.Fatalf("merge result %+v", got)
	}
}
