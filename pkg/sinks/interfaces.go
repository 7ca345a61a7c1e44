package sinks

import "context"

// Sink delivers events to a downstream destination (stdout, file, queue, ...).
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
