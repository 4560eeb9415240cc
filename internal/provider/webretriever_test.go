package provider

import (
	"strings"
	"testing"
)

func TestParseSearchResultDuckShape(t *testing.T) {
	raw := `{"results":[
		{"title":"Go","url":"https://go.dev","summary":"The Go programming language."},
		{"title":"Go wiki","url":"https://go.dev/wiki","summary":"Community wiki."}
	]}`
	docs := parseSearchResult(raw, 1)
	if len(docs) != 1 {
		t.Fatalf("k not honored: %d docs", len(docs))
	}
	if docs[0].Title != "Go" {
		t.Fatalf("title wrong: %q", docs[0].Title)
	}
	if docs[0].Header() != "Go" {
		t.Fatalf("first contents line must be the header: %q", docs[0].Header())
	}
	if !strings.Contains(docs[0].Contents, "The Go programming language.") {
		t.Fatalf("summary missing: %q", docs[0].Contents)
	}
	if !strings.Contains(docs[0].Contents, "https://go.dev") {
		t.Fatalf("source link missing: %q", docs[0].Contents)
	}
}

func TestParseSearchResultGoogleShape(t *testing.T) {
	raw := `{"items":[{"title":"Result","link":"https://example.com","snippet":"A snippet."}]}`
	docs := parseSearchResult(raw, 5)
	if len(docs) != 1 || docs[0].Title != "Result" {
		t.Fatalf("google shape not parsed: %#v", docs)
	}
	if !strings.Contains(docs[0].Contents, "A snippet.") {
		t.Fatalf("snippet missing: %q", docs[0].Contents)
	}
}

func TestParseSearchResultRawFallback(t *testing.T) {
	docs := parseSearchResult("plain text answer", 3)
	if len(docs) != 1 {
		t.Fatalf("expected single fallback doc, got %d", len(docs))
	}
	if !strings.Contains(docs[0].Contents, "plain text answer") {
		t.Fatalf("raw text lost: %q", docs[0].Contents)
	}
	if docs[0].Body() == "" {
		t.Fatalf("fallback doc needs a body below the header line")
	}
}
