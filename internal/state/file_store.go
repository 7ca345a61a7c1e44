package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/feedsift/feedsift/internal/logger"
)

const (
	stateVersion        = "1.0"
	maxStoredTitleRunes = 100
	tmpSuffix           = ".tmp"
	corruptSuffix       = ".corrupt"
)

// dedupState is the persisted document layout.
type dedupState struct {
	Version     string               `json:"version"`
	LastCleanup time.Time            `json:"last_cleanup"`
	Items       map[string]*SeenItem `json:"items"`
}

// fileStore keeps the dedup state in memory and persists it as one JSON
// document. Persistence happens only on Save; everything else is a map
// operation.
type fileStore struct {
	path      string
	retention time.Duration
	state     dedupState
	log       logger.Logger
}

// newFileStore opens the state at path. Opening never fails: a missing
// file starts fresh, and an undecodable one is quarantined under a
// .corrupt suffix and replaced with a fresh state.
func newFileStore(path string, opts Options, log logger.Logger) *fileStore {
	s := &fileStore{
		path:      path,
		retention: opts.Retention,
		log:       logger.Ensure(log),
	}
	s.state = s.loadOrCreate()
	return s
}

func (s *fileStore) loadOrCreate() dedupState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.InfoObj("creating new dedup state", "state", map[string]any{
				"path": s.path,
			})
		} else {
			s.log.ErrorObj("dedup state unreadable, starting fresh", "state_error", map[string]any{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return freshState()
	}

	var st dedupState
	if err := json.Unmarshal(data, &st); err != nil {
		s.quarantine(err)
		return freshState()
	}
	if st.Items == nil {
		st.Items = make(map[string]*SeenItem)
	}
	return st
}

func freshState() dedupState {
	return dedupState{
		Version:     stateVersion,
		LastCleanup: time.Now().UTC(),
		Items:       make(map[string]*SeenItem),
	}
}

// quarantine moves a damaged state file aside so the next save starts over
// cleanly. An earlier quarantine file at the same path is overwritten.
func (s *fileStore) quarantine(cause error) {
	backup := s.path + corruptSuffix
	if err := os.Rename(s.path, backup); err != nil {
		s.log.ErrorObj("dedup state corrupt and quarantine failed", "state_error", map[string]any{
			"path":         s.path,
			"decode_error": cause.Error(),
			"rename_error": err.Error(),
		})
		return
	}
	s.log.WarnObj("dedup state corrupt, quarantined", "state_error", map[string]any{
		"path":   s.path,
		"backup": backup,
		"error":  cause.Error(),
	})
}

// Close releases nothing for the file backend; persistence is explicit
// through Save.
func (s *fileStore) Close() error { return nil }

// IsSeen reports whether the identifier is known.
func (s *fileStore) IsSeen(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.state.Items[id]
	return ok
}

// MarkSeen records id as processed now. New identifiers start a record;
// known ones keep their first-seen time and gain a fetch. Source and the
// title, truncated to 100 characters, overwrite the stored values.
func (s *fileStore) MarkSeen(id, source, title string) {
	if s == nil {
		return
	}

	now := time.Now().UTC()
	item, ok := s.state.Items[id]
	if !ok {
		item = &SeenItem{FirstSeen: now}
		s.state.Items[id] = item
	}
	item.LastSeen = now
	item.FetchCount++
	item.Source = source
	item.Title = truncateTitle(title)
}

// Cleanup drops every entry whose last-seen time is not strictly after
// now minus the retention window.
func (s *fileStore) Cleanup() int {
	if s == nil {
		return 0
	}

	cutoff := time.Now().UTC().Add(-s.retention)
	removed := 0
	for id, item := range s.state.Items {
		if !item.LastSeen.After(cutoff) {
			delete(s.state.Items, id)
			removed++
		}
	}
	return removed
}

// Save writes the state atomically: marshal to a temp file next to the
// target, then rename over it, so readers never observe a partial
// document. last_cleanup is refreshed as part of the same write. Failures
// are logged and swallowed; the in-memory state stays usable either way.
func (s *fileStore) Save() {
	if s == nil {
		return
	}

	s.state.LastCleanup = time.Now().UTC()

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logSaveError("create state directory", err)
			return
		}
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		s.logSaveError("encode state", err)
		return
	}

	tmp := s.path + tmpSuffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logSaveError("write temp state", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logSaveError("replace state file", err)
		return
	}

	s.log.DebugObj("dedup state saved", "state", map[string]any{
		"path":  s.path,
		"items": len(s.state.Items),
	})
}

func (s *fileStore) logSaveError(stage string, err error) {
	s.log.ErrorObj("dedup state save failed", "save_error", map[string]any{
		"path":  s.path,
		"stage": stage,
		"error": err.Error(),
	})
}

// Stats reports the item count and the oldest/newest last-seen times.
func (s *fileStore) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	stats := Stats{TotalItems: len(s.state.Items)}
	for _, item := range s.state.Items {
		last := item.LastSeen
		if stats.OldestEntry == nil || last.Before(*stats.OldestEntry) {
			oldest := last
			stats.OldestEntry = &oldest
		}
		if stats.NewestEntry == nil || last.After(*stats.NewestEntry) {
			newest := last
			stats.NewestEntry = &newest
		}
	}
	return stats
}

func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= maxStoredTitleRunes {
		return title
	}
	return string([]rune(title)[:maxStoredTitleRunes])
}
