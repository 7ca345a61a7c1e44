package sinks

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder constructs a sink from its configuration.
type Builder func(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error)

// Registry resolves builders by sink type.
type Registry interface {
	Register(sinkType string, b Builder)
	BuilderFor(sinkType string) (Builder, error)
}

// BuilderRegistry is a thread-safe Registry implementation.
type BuilderRegistry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewBuilderRegistry returns an empty registry.
func NewBuilderRegistry() *BuilderRegistry {
	return &BuilderRegistry{builders: make(map[string]Builder)}
}

// DefaultRegistry returns a registry with all built-in sink types registered.
func DefaultRegistry() *BuilderRegistry {
	reg := NewBuilderRegistry()
	reg.Register(TypeStdout, NewStdoutSink)
	reg.Register(TypeFile, NewFileSink)
	reg.Register(TypeHTTP, NewHTTPSink)
	reg.Register(TypeSQS, NewSQSSink)
	reg.Register(TypeSNS, NewSNSSink)
	reg.Register(TypeGCPPubSub, NewGCPPubSubSink)
	return reg
}

// Register adds a builder for the given sink type.
func (r *BuilderRegistry) Register(sinkType string, b Builder) {
	sinkType = strings.ToLower(strings.TrimSpace(sinkType))
	if sinkType == "" || b == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[sinkType] = b
}

// BuilderFor returns the builder registered for the given sink type.
func (r *BuilderRegistry) BuilderFor(sinkType string) (Builder, error) {
	sinkType = strings.ToLower(strings.TrimSpace(sinkType))

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.builders[sinkType]
	if !ok {
		return nil, fmt.Errorf("no builder registered for sink type %q", sinkType)
	}
	return b, nil
}

// BuildAll constructs sinks for every enabled config entry.
func BuildAll(ctx context.Context, reg Registry, cfgs []SinkConfig, log Logger) ([]Sink, error) {
	log = ensureLogger(log)

	out := make([]Sink, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.EnabledValue() {
			continue
		}

		b, err := reg.BuilderFor(cfg.Type)
		if err != nil {
			return nil, fmt.Errorf("sink %q: %w", cfg.ID, err)
		}

		s, err := b(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("build sink %q: %w", cfg.ID, err)
		}
		out = append(out, s)
	}

	return out, nil
}
