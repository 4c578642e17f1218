package entities

import "testing"

func TestExtractNameBookPattern(t *testing.T) {
	name, ok := ExtractName("Book Chen for tomorrow at 10:30")
	if !ok || name != "Chen" {
		t.Fatalf("expected Chen, got %q ok=%v", name, ok)
	}
}

func TestExtractNameForPattern(t *testing.T) {
	name, ok := ExtractName("an appointment for Rivera please")
	if !ok || name != "Rivera" {
		t.Fatalf("expected Rivera, got %q ok=%v", name, ok)
	}
}

func TestExtractNameNoMatch(t *testing.T) {
	_, ok := ExtractName("book for tomorrow")
	if ok {
		t.Fatal("expected no name match")
	}
}

func TestExtractLocationMatches(t *testing.T) {
	loc := ExtractLocation("book Rivera for tomorrow at 9am at Uptown")
	if loc != "Uptown" {
		t.Fatalf("expected Uptown, got %q", loc)
	}
}

func TestExtractLocationDefaultsToMidtown(t *testing.T) {
	loc := ExtractLocation("book Chen for tomorrow at 10:30")
	if loc != "Midtown" {
		t.Fatalf("expected default Midtown, got %q", loc)
	}
}
