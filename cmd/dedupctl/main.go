// Command dedupctl inspects and maintains the dedup state without running
// a sift pass.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/feedsift/feedsift/internal/config"
	"github.com/feedsift/feedsift/internal/logger"
	"github.com/feedsift/feedsift/internal/state"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dedupctl failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: dedupctl <stats|cleanup>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	store, err := state.NewStore(cfg.StorageType, cfg.StatePath, state.Options{
		Retention: cfg.Retention,
	}, log)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	defer store.Close()

	switch args[0] {
	case "stats":
		return printStats(store)
	case "cleanup":
		return runCleanup(store, cfg.Retention)
	default:
		return fmt.Errorf("unknown command %q (expected stats or cleanup)", args[0])
	}
}

// printStats reports what the dedup store currently tracks.
func printStats(store state.Store) error {
	stats := store.Stats()

	fmt.Printf("tracked items: %d\n", stats.TotalItems)
	if stats.OldestEntry != nil {
		fmt.Printf("oldest entry:  %s\n", stats.OldestEntry.Format(time.RFC3339))
	}
	if stats.NewestEntry != nil {
		fmt.Printf("newest entry:  %s\n", stats.NewestEntry.Format(time.RFC3339))
	}
	return nil
}

// runCleanup expires stale entries and persists the result.
func runCleanup(store state.Store, retention time.Duration) error {
	removed := store.Cleanup()
	store.Save()

	stats := store.Stats()
	fmt.Printf("expired %d items (retention %s), %d remaining\n", removed, formatRetention(retention), stats.TotalItems)
	return nil
}

// formatRetention renders the window in days, the unit operators configure.
func formatRetention(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
