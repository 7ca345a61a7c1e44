// Package sift runs the dedup pass: read each source, resolve entry
// identities, drop what the store has already seen, and hand the rest
// to the sinks.
package sift

import (
	"context"
	"errors"
	"fmt"

	"github.com/feedsift/feedsift/internal/logger"
	"github.com/feedsift/feedsift/pkg/sinks"
	"github.com/feedsift/feedsift/pkg/sources"
)

// Service coordinates sifting across multiple sources.
type Service struct {
	readers  sources.ReaderRegistry
	resolver EntryResolver
	sink     EventSink
	store    SeenStore
	log      logger.Logger
}

// NewService wires a sift service from its collaborators.
func NewService(readers sources.ReaderRegistry, resolver EntryResolver, sink EventSink, store SeenStore, log logger.Logger) *Service {
	return &Service{
		readers:  readers,
		resolver: resolver,
		sink:     sink,
		store:    store,
		log:      logger.Ensure(log),
	}
}

// Run executes one sift pass over all configured sources.
func (s *Service) Run(ctx context.Context, cfgs []sources.Source) error {
	if s == nil || s.readers == nil || s.resolver == nil || s.store == nil {
		return fmt.Errorf("sift service is not initialized")
	}

	if len(cfgs) == 0 {
		return fmt.Errorf("no sources configured for sifting")
	}

	errs := s.runAll(ctx, cfgs)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (s *Service) runAll(ctx context.Context, cfgs []sources.Source) []error {
	errs := make([]error, 0, len(cfgs))

	for _, cfg := range cfgs {
		if ctx.Err() != nil {
			return errs
		}
		if err := s.runSource(ctx, cfg); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("source sift failed", "source_error", map[string]any{
				"source_id": cfg.ID,
				"error":     err.Error(),
			})
		}
	}

	return errs
}

func (s *Service) runSource(ctx context.Context, cfg sources.Source) error {
	reader, err := s.readers.ReaderFor(cfg)
	if err != nil {
		return fmt.Errorf("resolve reader for source %s: %w", cfg.ID, err)
	}

	entries, err := reader.Read(ctx, cfg)
	if err != nil {
		return fmt.Errorf("read source %s: %w", cfg.ID, err)
	}

	// Resolve, check, publish, and mark one entry at a time: marking the
	// first occurrence makes a repeat of the same identity later in the
	// document come up as already seen.
	var errs []error
	published := 0
	skipped := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		id := s.resolver.Resolve(entry)
		if s.store.IsSeen(id.Value) {
			skipped++
			s.log.DebugObj("entry already seen", "seen_entry", map[string]any{
				"source_id": cfg.ID,
				"identity":  id.Value,
			})
			continue
		}

		evt := sinks.NewEvent(cfg.ID, cfg.Name, entry, id)
		successes, err := s.sink.Publish(ctx, evt)
		if err != nil {
			errs = append(errs, fmt.Errorf("publish entry %s: %w", id.Value, err))
		}
		if successes > 0 {
			s.store.MarkSeen(id.Value, cfg.Name, entry.Title)
			published++
		}
	}

	s.log.InfoObj("source sift completed", "source_result", map[string]any{
		"source_id":    cfg.ID,
		"entries_read": len(entries),
		"published":    published,
		"skipped_seen": skipped,
	})

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
