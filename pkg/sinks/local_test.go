package sinks

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/feedsift/feedsift/internal/domain"
	"github.com/feedsift/feedsift/internal/identity"
)

func TestStdoutSinkWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	s := &stdoutSink{id: "console", typ: TypeStdout, out: &buf}

	evt := NewEvent("source-1", "Example", domain.Entry{
		Link:  "https://example.com/a",
		Title: "Hello",
	}, identity.Identity{Kind: identity.KindLink, Value: "https://example.com/a"})

	if err := s.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("output is not a JSON line: %v", err)
	}
	if decoded.SourceID != "source-1" || decoded.Identity.Value != "https://example.com/a" {
		t.Fatalf("unexpected event payload: %#v", decoded)
	}
}

func TestFileSinkAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "events.jsonl")

	s, err := NewFileSink(context.Background(), SinkConfig{
		ID:   "archive",
		Type: TypeFile,
		File: &FileSinkConfig{Path: path},
	}, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	for _, title := range []string{"first", "second"} {
		evt := NewEvent("source-1", "Example", domain.Entry{Title: title}, identity.Identity{
			Kind:  identity.KindComposite,
			Value: title + "|2024-01-02",
		})
		if err := s.Publish(context.Background(), evt); err != nil {
			t.Fatalf("Publish(%s): %v", title, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open sink file: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("line %d is not JSON: %v", lines+1, err)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}
