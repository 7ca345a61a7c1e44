package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const rssDocument = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>https://example.com</link>
    <description>Example</description>
    <item>
      <title>First Post</title>
      <link>https://example.com/first?utm_source=rss</link>
      <guid>https://example.com/first-guid</guid>
      <description>First summary</description>
      <pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <description>Second summary</description>
    </item>
  </channel>
</rss>`

func TestFeedReaderReadsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(rssDocument), 0o644); err != nil {
		t.Fatalf("write feed document: %v", err)
	}

	reader := NewFeedReader()
	entries, err := reader.Read(context.Background(), Source{ID: "ex", Type: TypeFeed, Path: path, MaxItems: 10})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.GUID != "https://example.com/first-guid" {
		t.Fatalf("unexpected guid: %q", first.GUID)
	}
	if first.Link != "https://example.com/first?utm_source=rss" {
		t.Fatalf("expected link untouched by the reader, got %q", first.Link)
	}
	if first.Published != "Tue, 02 Jan 2024 10:00:00 GMT" {
		t.Fatalf("expected raw published text, got %q", first.Published)
	}
	if first.Summary != "First summary" {
		t.Fatalf("unexpected summary: %q", first.Summary)
	}

	// No guid element means no guid; identity fallback happens elsewhere.
	if entries[1].GUID != "" {
		t.Fatalf("expected empty guid for second entry, got %q", entries[1].GUID)
	}
}

func TestFeedReaderHonorsMaxItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(rssDocument), 0o644); err != nil {
		t.Fatalf("write feed document: %v", err)
	}

	reader := NewFeedReader()
	entries, err := reader.Read(context.Background(), Source{ID: "ex", Type: TypeFeed, Path: path, MaxItems: 1})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "First Post" {
		t.Fatalf("expected document order preserved, got %q", entries[0].Title)
	}
}

func TestFeedReaderErrors(t *testing.T) {
	reader := NewFeedReader()

	if _, err := reader.Read(context.Background(), Source{ID: "ex", Type: TypeFeed, Path: filepath.Join(t.TempDir(), "missing.xml")}); err == nil {
		t.Fatalf("expected error for missing document")
	}

	path := filepath.Join(t.TempDir(), "broken.xml")
	if err := os.WriteFile(path, []byte("this is not a feed"), 0o644); err != nil {
		t.Fatalf("write broken document: %v", err)
	}
	if _, err := reader.Read(context.Background(), Source{ID: "ex", Type: TypeFeed, Path: path}); err == nil {
		t.Fatalf("expected error for unparseable document")
	}
}
