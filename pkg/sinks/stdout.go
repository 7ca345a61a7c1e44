package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// stdoutSink writes events as JSON lines to a writer, stdout by default.
type stdoutSink struct {
	id  string
	typ string
	out io.Writer
}

// NewStdoutSink creates a sink that prints one JSON line per event.
func NewStdoutSink(_ context.Context, cfg SinkConfig, _ Logger) (Sink, error) {
	return &stdoutSink{
		id:  cfg.ID,
		typ: TypeStdout,
		out: os.Stdout,
	}, nil
}

func (s *stdoutSink) ID() string   { return s.id }
func (s *stdoutSink) Type() string { return s.typ }

func (s *stdoutSink) Publish(_ context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintln(s.out, string(payload)); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
