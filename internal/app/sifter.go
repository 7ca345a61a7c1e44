package app

import (
	"context"
	"fmt"
	"time"

	"github.com/feedsift/feedsift/internal/config"
	"github.com/feedsift/feedsift/internal/identity"
	"github.com/feedsift/feedsift/internal/logger"
	"github.com/feedsift/feedsift/internal/sift"
	"github.com/feedsift/feedsift/internal/state"
	"github.com/feedsift/feedsift/pkg/sinks"
	"github.com/feedsift/feedsift/pkg/sources"
)

// Sifter represents the feed sifting runtime. It manages the sift loop,
// coordinating between source readers, the dedup store, and sinks. It also
// handles state initialization and cleanup.
type Sifter struct {
	cfg          *config.Config
	sourceReg    *sources.Registry
	fanout       *sinks.Fanout
	siftService  *sift.Service
	siftInterval time.Duration
	log          logger.Logger
	store        state.Store
}

// NewSifter builds a sifter runtime from config files.
func NewSifter(ctx context.Context, cfg *config.Config, log logger.Logger) (*Sifter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	sourceList := sourceReg.All()
	sourceIDs := make([]string, 0, len(sourceList))
	for _, s := range sourceList {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	sinkReg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}

	enabledSinks := sinkReg.Enabled()
	if len(enabledSinks) == 0 {
		return nil, fmt.Errorf("no sinks configured")
	}

	sinkRegistry := sinks.DefaultRegistry()
	sinkClients, err := sinks.BuildAll(ctx, sinkRegistry, enabledSinks, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}
	fanout := sinks.NewFanout(sinkClients)
	sinkSummaries := make([]map[string]string, 0, len(enabledSinks))
	for _, sinkCfg := range enabledSinks {
		sinkSummaries = append(sinkSummaries, map[string]string{
			"id":   sinkCfg.ID,
			"type": sinkCfg.Type,
		})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(sinkSummaries),
		"sinks": sinkSummaries,
	})

	storeOpts := state.Options{
		Retention: cfg.Retention,
	}
	store, err := state.NewStore(cfg.StorageType, cfg.StatePath, storeOpts, log)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}
	log.InfoObj("state initialized", "state_config", map[string]any{
		"type":           cfg.StorageType,
		"path":           cfg.StatePath,
		"retention_days": cfg.RetentionDays,
	})

	siftService := sift.NewService(sources.DefaultReaderRegistry(), identity.NewResolver(log), fanout, store, log)

	return &Sifter{
		cfg:          cfg,
		sourceReg:    sourceReg,
		fanout:       fanout,
		siftService:  siftService,
		siftInterval: cfg.SiftInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run executes the sift loop until the context is cancelled. A zero
// interval runs a single pass and returns.
func (s *Sifter) Run(ctx context.Context) error {
	if s == nil || s.siftService == nil {
		return fmt.Errorf("sifter is not initialized")
	}
	defer s.closeStore()
	enabled := s.sourceReg.Enabled()
	if len(enabled) == 0 {
		return fmt.Errorf("no sources enabled in %s", s.cfg.SourcesFile)
	}

	s.log.InfoObj("sifter starting", "sifter_state", map[string]any{
		"sources_count": len(enabled),
		"sinks_count":   s.fanout.Size(),
		"sift_interval": s.siftInterval.String(),
	})

	if err := s.runOnce(ctx, enabled); err != nil {
		if s.siftInterval == 0 {
			return err
		}
		s.log.ErrorObj("initial sift failed", "error", err)
	}
	if s.siftInterval == 0 {
		return nil
	}

	ticker := time.NewTicker(s.siftInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("sifter exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := s.runOnce(ctx, enabled); err != nil {
				s.log.ErrorObj("scheduled sift failed", "error", err)
			}
		}
	}
}

// runOnce performs a single sift pass across all sources, then expires and
// persists the dedup state.
func (s *Sifter) runOnce(ctx context.Context, srcs []sources.Source) error {
	start := time.Now()
	s.log.InfoObj("sift pass started", "pass_meta", map[string]any{
		"sources_count": len(srcs),
		"started_at":    start.UTC(),
	})

	runErr := s.siftService.Run(ctx, srcs)

	removed := s.store.Cleanup()
	s.store.Save()

	stats := s.store.Stats()
	s.log.InfoObj("sift pass completed", "pass_meta", map[string]any{
		"sources_count": len(srcs),
		"elapsed_ms":    time.Since(start).Milliseconds(),
		"expired":       removed,
		"tracked_items": stats.TotalItems,
	})

	return runErr
}

// closeStore safely closes the state backend, logging any errors encountered.
func (s *Sifter) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.ErrorObj("state close failed", "error", err)
	}
}
