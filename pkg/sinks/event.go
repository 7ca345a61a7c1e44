package sinks

import (
	"time"

	"github.com/feedsift/feedsift/internal/domain"
	"github.com/feedsift/feedsift/internal/identity"
)

// Event is the payload published downstream for one fresh feed entry.
type Event struct {
	SourceID    string            `json:"source_id"`
	SourceName  string            `json:"source_name"`
	Identity    identity.Identity `json:"identity"`
	Entry       domain.Entry      `json:"entry"`
	CollectedAt time.Time         `json:"collected_at"`
}

// NewEvent constructs an Event for the given source + entry.
func NewEvent(sourceID, sourceName string, entry domain.Entry, id identity.Identity) Event {
	return Event{
		SourceID:    sourceID,
		SourceName:  sourceName,
		Identity:    id,
		Entry:       entry,
		CollectedAt: time.Now().UTC(),
	}
}
