package state

import (
	"path/filepath"
	"testing"
)

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{}, nil)
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}

	store.MarkSeen("x", "Feed", "Title")
	if store.IsSeen("x") {
		t.Fatalf("noop store must never report items as seen")
	}
	if removed := store.Cleanup(); removed != 0 {
		t.Fatalf("noop cleanup removed %d", removed)
	}
	if stats := store.Stats(); stats.TotalItems != 0 {
		t.Fatalf("noop stats reported %d items", stats.TotalItems)
	}
}

func TestNewStoreDefaultsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewStore("", path, Options{}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := store.(*fileStore); !ok {
		t.Fatalf("expected file store, got %T", store)
	}
}

func TestNewStoreRequiresPath(t *testing.T) {
	if _, err := NewStore("file", "  ", Options{}, nil); err == nil {
		t.Fatalf("expected error for file store without path")
	}
	if _, err := NewStore("bbolt", "", Options{}, nil); err == nil {
		t.Fatalf("expected error for bbolt store without path")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "ignored", Options{}, nil); err == nil {
		t.Fatalf("expected unsupported storage type error")
	}
}
