package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/feedsift/feedsift/internal/logger"
)

const (
	itemsBucket    = "items"
	metaBucket     = "meta"
	lastCleanupKey = "last_cleanup"
)

// boltStore implements Store on a BoltDB file. The item set never lives in
// memory, and transactions are durable on commit, so Save only records the
// cleanup checkpoint. Suited to state files too large to rewrite each run.
type boltStore struct {
	db        *bolt.DB
	retention time.Duration
	log       logger.Logger
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options, log logger.Logger) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(itemsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{
		db:        db,
		retention: opts.Retention,
		log:       logger.Ensure(log),
	}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// IsSeen reports whether the identifier exists. Lookup problems are logged
// and answered as unseen.
func (b *boltStore) IsSeen(id string) bool {
	if b == nil || b.db == nil {
		return false
	}

	var exists bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(itemsBucket))
		if bucket == nil {
			return fmt.Errorf("items bucket missing")
		}
		exists = bucket.Get([]byte(id)) != nil
		return nil
	})
	if err != nil {
		b.log.ErrorObj("seen lookup failed", "state_error", map[string]any{
			"id":    id,
			"error": err.Error(),
		})
		return false
	}
	return exists
}

// MarkSeen records id as processed now. Write problems are logged and the
// mark is lost, which at worst re-emits the item on a later run.
func (b *boltStore) MarkSeen(id, source, title string) {
	if b == nil || b.db == nil {
		return
	}

	now := time.Now().UTC()
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(itemsBucket))
		if bucket == nil {
			return fmt.Errorf("items bucket missing")
		}

		key := []byte(id)
		item := SeenItem{FirstSeen: now}
		if raw := bucket.Get(key); raw != nil {
			var prev SeenItem
			if err := json.Unmarshal(raw, &prev); err == nil {
				item = prev
			}
		}
		item.LastSeen = now
		item.FetchCount++
		item.Source = source
		item.Title = truncateTitle(title)

		raw, err := json.Marshal(item)
		if err != nil {
			return err
		}
		return bucket.Put(key, raw)
	})
	if err != nil {
		b.log.ErrorObj("mark seen failed", "state_error", map[string]any{
			"id":    id,
			"error": err.Error(),
		})
	}
}

// Cleanup removes entries last seen at or before the retention cutoff.
// Values that no longer decode are removed with them.
func (b *boltStore) Cleanup() int {
	if b == nil || b.db == nil {
		return 0
	}

	cutoff := time.Now().UTC().Add(-b.retention)
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(itemsBucket))
		if bucket == nil {
			return fmt.Errorf("items bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var item SeenItem
			if err := json.Unmarshal(v, &item); err != nil || !item.LastSeen.After(cutoff) {
				if err := cursor.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	if err != nil {
		b.log.ErrorObj("cleanup failed", "state_error", map[string]any{
			"error": err.Error(),
		})
	}
	return removed
}

// Save records the cleanup checkpoint. Item writes are already durable on
// transaction commit.
func (b *boltStore) Save() {
	if b == nil || b.db == nil {
		return
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucket))
		if bucket == nil {
			return fmt.Errorf("meta bucket missing")
		}
		return bucket.Put([]byte(lastCleanupKey), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		b.log.ErrorObj("dedup state save failed", "save_error", map[string]any{
			"error": err.Error(),
		})
	}
}

// Stats reports the item count and the oldest/newest last-seen times.
func (b *boltStore) Stats() Stats {
	if b == nil || b.db == nil {
		return Stats{}
	}

	var stats Stats
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(itemsBucket))
		if bucket == nil {
			return fmt.Errorf("items bucket missing")
		}

		return bucket.ForEach(func(_, v []byte) error {
			stats.TotalItems++
			var item SeenItem
			if err := json.Unmarshal(v, &item); err != nil {
				return nil
			}
			last := item.LastSeen
			if stats.OldestEntry == nil || last.Before(*stats.OldestEntry) {
				oldest := last
				stats.OldestEntry = &oldest
			}
			if stats.NewestEntry == nil || last.After(*stats.NewestEntry) {
				newest := last
				stats.NewestEntry = &newest
			}
			return nil
		})
	})
	if err != nil {
		b.log.ErrorObj("stats collection failed", "state_error", map[string]any{
			"error": err.Error(),
		})
	}
	return stats
}
