package sift

import (
	"context"

	"github.com/feedsift/feedsift/internal/domain"
	"github.com/feedsift/feedsift/internal/identity"
	"github.com/feedsift/feedsift/pkg/sinks"
)

// EntryResolver derives the dedup identity for an entry.
type EntryResolver interface {
	Resolve(entry domain.Entry) identity.Identity
}

// EventSink delivers fresh entries downstream. It reports how many
// deliveries succeeded alongside any aggregated error.
type EventSink interface {
	Publish(ctx context.Context, evt sinks.Event) (int, error)
}

// SeenStore is the subset of the dedup store the sift pass uses.
type SeenStore interface {
	IsSeen(id string) bool
	MarkSeen(id, source, title string)
}
