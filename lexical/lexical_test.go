package lexical

import "testing"

func corpus() []Entry {
	return []Entry{
		{PointID: "p1", DocID: "doc-a", ChunkIndex: 0, Text: "Our late policy: patients arriving more than 15 minutes late are rescheduled."},
		{PointID: "p2", DocID: "doc-b", ChunkIndex: 0, Text: "Parking is available behind the building, free for the first hour."},
		{PointID: "p3", DocID: "doc-c", ChunkIndex: 0, Text: "Office hours are Monday through Friday, 8am to 6pm."},
	}
}

func TestSearchRanksMatchingDocumentHighest(t *testing.T) {
	idx := New()
	idx.Rebuild(corpus())

	results := idx.Search("what is the late policy", 3)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].DocID != "doc-a" {
		t.Fatalf("expected doc-a ranked first, got %s", results[0].DocID)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	idx := New()
	idx.Rebuild(corpus())

	results := idx.Search("office hours parking late policy", 1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearchEmptyIndexReturnsNil(t *testing.T) {
	idx := New()

	results := idx.Search("anything", 3)
	if results != nil {
		t.Fatalf("expected nil results on empty index, got %v", results)
	}
}

func TestSearchNoMatchingTermsReturnsEmpty(t *testing.T) {
	idx := New()
	idx.Rebuild(corpus())

	results := idx.Search("xyzzy nonexistent qux", 3)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestClearEmptiesIndex(t *testing.T) {
	idx := New()
	idx.Rebuild(corpus())
	idx.Clear()

	results := idx.Search("late policy", 3)
	if len(results) != 0 {
		t.Fatalf("expected empty index after Clear, got %d results", len(results))
	}
}

func TestRebuildReplacesPreviousContents(t *testing.T) {
	idx := New()
	idx.Rebuild(corpus())
	idx.Rebuild([]Entry{{PointID: "p9", DocID: "doc-z", ChunkIndex: 0, Text: "brand new content about insurance coverage"}})

	results := idx.Search("insurance coverage", 3)
	if len(results) != 1 || results[0].DocID != "doc-z" {
		t.Fatalf("expected rebuild to replace contents, got %+v", results)
	}

	stale := idx.Search("late policy", 3)
	if len(stale) != 0 {
		t.Fatalf("expected stale query to return nothing after rebuild, got %+v", stale)
	}
}
