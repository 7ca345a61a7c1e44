package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/feedsift/feedsift/internal/logger"
)

// Package state persists which feed items have already been processed.

// SeenItem is the bookkeeping record kept for one deduplicated item.
type SeenItem struct {
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	FetchCount int       `json:"fetch_count"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
}

// Stats summarizes the store contents. OldestEntry and NewestEntry are
// computed over last-seen times and are nil when the store is empty.
type Stats struct {
	TotalItems  int
	OldestEntry *time.Time
	NewestEntry *time.Time
}

// Options controls retention for concrete store implementations.
type Options struct {
	Retention time.Duration
}

const defaultRetention = 7 * 24 * time.Hour

// Store tracks processed item identifiers across runs.
//
// Implementations do not surface operational failures on the per-item
// path: a store that cannot read or persist logs the problem and degrades
// to answering fail-open (items look unseen, marks may be lost). Feed
// processing never stops because the dedup layer is having a bad day.
//
// A store assumes a single owning process and does no cross-process
// locking.
type Store interface {
	Close() error
	// IsSeen reports whether the identifier is known. It is a pure
	// lookup: no timestamps move, no counters change.
	IsSeen(id string) bool
	// MarkSeen records a processed item. Repeated marks bump the fetch
	// count and last-seen time; source and title overwrite stored values.
	MarkSeen(id, source, title string)
	// Cleanup drops entries last seen at or before the retention cutoff
	// and returns how many were removed.
	Cleanup() int
	// Save makes the current state durable, best effort.
	Save()
	Stats() Stats
}

// NewStore creates the configured state backend.
func NewStore(typ, path string, opts Options, log logger.Logger) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "file":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("file state requires a path")
		}
		return newFileStore(path, opts, log), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt state requires a path")
		}
		return openBolt(path, opts, log)
	case "none", "disabled":
		return noopStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) IsSeen(string) bool              { return false }
func (noopStore) MarkSeen(string, string, string) {}
func (noopStore) Cleanup() int                    { return 0 }
func (noopStore) Save()                           {}
func (noopStore) Stats() Stats                    { return Stats{} }
