package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileSink appends events as JSON lines to a local file.
type fileSink struct {
	id   string
	typ  string
	path string
}

// NewFileSink creates a sink that appends one JSON line per event to a file.
func NewFileSink(_ context.Context, cfg SinkConfig, _ Logger) (Sink, error) {
	if cfg.File == nil {
		return nil, fmt.Errorf("sink %q missing file configuration", cfg.ID)
	}

	if dir := filepath.Dir(cfg.File.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sink directory: %w", err)
		}
	}

	return &fileSink{
		id:   cfg.ID,
		typ:  TypeFile,
		path: cfg.File.Path,
	}, nil
}

func (s *fileSink) ID() string   { return s.id }
func (s *fileSink) Type() string { return s.typ }

// Publish opens the file in append mode per event so concurrent runs of the
// binary never hold the handle across a full pass.
func (s *fileSink) Publish(_ context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sink file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, string(payload)); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}
