package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/feedsift/feedsift/internal/domain"
)

// Reader loads the entries of one source document.
type Reader interface {
	Read(ctx context.Context, src Source) ([]domain.Entry, error)
}

// ReaderRegistry resolves the reader for a source by its type.
type ReaderRegistry interface {
	Register(typ string, reader Reader)
	ReaderFor(src Source) (Reader, error)
}

type readerRegistry struct {
	mu      sync.RWMutex
	readers map[string]Reader
}

// NewReaderRegistry builds a registry with optional pre-registered readers.
func NewReaderRegistry(readers map[string]Reader) ReaderRegistry {
	reg := &readerRegistry{
		readers: make(map[string]Reader),
	}
	for typ, r := range readers {
		reg.Register(typ, r)
	}
	return reg
}

// Register associates a reader with a source type.
func (r *readerRegistry) Register(typ string, reader Reader) {
	if typ = strings.ToLower(strings.TrimSpace(typ)); typ == "" || reader == nil {
		return
	}

	r.mu.Lock()
	r.readers[typ] = reader
	r.mu.Unlock()
}

// ReaderFor selects the reader for the given source based on its type.
func (r *readerRegistry) ReaderFor(src Source) (Reader, error) {
	if r == nil {
		return nil, fmt.Errorf("reader registry is nil")
	}

	typ := strings.ToLower(strings.TrimSpace(src.Type))
	if typ == "" {
		return nil, fmt.Errorf("source %q has no type configured", src.ID)
	}

	r.mu.RLock()
	reader := r.readers[typ]
	r.mu.RUnlock()

	if reader == nil {
		return nil, fmt.Errorf("no reader registered for source %q (type %q)", src.ID, src.Type)
	}
	return reader, nil
}

// DefaultReaderRegistry wires up the known source readers.
func DefaultReaderRegistry() ReaderRegistry {
	return NewReaderRegistry(map[string]Reader{
		TypeFeed:  NewFeedReader(),
		TypeItems: NewItemsReader(),
	})
}
