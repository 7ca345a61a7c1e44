package sift

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/feedsift/feedsift/internal/domain"
	"github.com/feedsift/feedsift/internal/identity"
	"github.com/feedsift/feedsift/pkg/sinks"
	"github.com/feedsift/feedsift/pkg/sources"
)

// fakeReader returns preset entries or an error.
type fakeReader struct {
	entries []domain.Entry
	err     error
}

func (f *fakeReader) Read(_ context.Context, _ sources.Source) ([]domain.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

// fakeSink records published events and can inject errors per identity.
type fakeSink struct {
	events     []sinks.Event
	errOnValue string
	successes  int
}

func (f *fakeSink) Publish(_ context.Context, evt sinks.Event) (int, error) {
	f.events = append(f.events, evt)
	if evt.Identity.Value == f.errOnValue {
		return 0, errors.New("boom")
	}
	f.successes++
	return 1, nil
}

// fakeStore tracks seen identities in memory.
type fakeStore struct {
	seen    map[string]bool
	sources map[string]string
}

func (f *fakeStore) IsSeen(id string) bool { return f.seen[id] }

func (f *fakeStore) MarkSeen(id, source, _ string) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.sources == nil {
		f.sources = make(map[string]string)
	}
	f.seen[id] = true
	f.sources[id] = source
}

func newTestService(reader sources.Reader, sink EventSink, store SeenStore) *Service {
	readers := sources.NewReaderRegistry(map[string]sources.Reader{
		sources.TypeFeed: reader,
	})
	return NewService(readers, identity.NewResolver(nil), sink, store, nil)
}

func TestServicePublishesFreshEntriesOnly(t *testing.T) {
	cfg := sources.Source{ID: "s1", Name: "Source1", Type: sources.TypeFeed}
	entries := []domain.Entry{
		{GUID: "a1", Title: "old"},
		{GUID: "a2", Title: "new"},
	}

	store := &fakeStore{seen: map[string]bool{"a1": true}}
	sink := &fakeSink{}

	svc := newTestService(&fakeReader{entries: entries}, sink, store)

	if err := svc.Run(context.Background(), []sources.Source{cfg}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(sink.events))
	}
	evt := sink.events[0]
	if evt.Identity.Value != "a2" || evt.Entry.Title != "new" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.SourceID != "s1" || evt.SourceName != "Source1" {
		t.Fatalf("event missing source metadata: %+v", evt)
	}
	if sink.successes != 1 {
		t.Fatalf("expected 1 successful delivery, got %d", sink.successes)
	}
	if !store.seen["a2"] {
		t.Fatalf("MarkSeen not called for fresh entry")
	}
	if store.sources["a2"] != "Source1" {
		t.Fatalf("MarkSeen recorded source %q", store.sources["a2"])
	}
}

func TestServiceSkipsDuplicateWithinDocument(t *testing.T) {
	cfg := sources.Source{ID: "s1", Name: "Source1", Type: sources.TypeFeed}
	// The same identity twice in one document: the first occurrence is
	// marked as seen before the second is checked.
	entries := []domain.Entry{
		{GUID: "a1", Title: "first occurrence"},
		{GUID: "a1", Title: "repeat"},
		{GUID: "a2", Title: "other"},
	}

	store := &fakeStore{}
	sink := &fakeSink{}

	svc := newTestService(&fakeReader{entries: entries}, sink, store)

	if err := svc.Run(context.Background(), []sources.Source{cfg}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(sink.events))
	}
	if sink.events[0].Identity.Value != "a1" || sink.events[1].Identity.Value != "a2" {
		t.Fatalf("unexpected published identities: %q, %q",
			sink.events[0].Identity.Value, sink.events[1].Identity.Value)
	}
	if sink.events[0].Entry.Title != "first occurrence" {
		t.Fatalf("expected the first occurrence delivered, got %q", sink.events[0].Entry.Title)
	}
}

func TestServiceAggregatesPublishErrors(t *testing.T) {
	cfg := sources.Source{ID: "s1", Name: "Source1", Type: sources.TypeFeed}
	sink := &fakeSink{errOnValue: "bad"}
	store := &fakeStore{}

	svc := newTestService(&fakeReader{entries: []domain.Entry{{GUID: "bad"}}}, sink, store)

	err := svc.Run(context.Background(), []sources.Source{cfg})
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected error mentioning bad entry, got %v", err)
	}
	if store.seen["bad"] {
		t.Fatalf("undelivered entry must not be marked seen")
	}
}

func TestServiceRunRequiresSources(t *testing.T) {
	svc := newTestService(&fakeReader{}, &fakeSink{}, &fakeStore{})
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when sources list empty")
	}
}

func TestServiceRunAllCancelsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(&fakeReader{entries: []domain.Entry{{GUID: "a1"}}}, &fakeSink{}, &fakeStore{})
	errs := svc.runAll(ctx, []sources.Source{{ID: "s1", Type: sources.TypeFeed}})
	if len(errs) != 0 {
		t.Fatalf("expected no errors on cancelled context, got %v", errs)
	}
}

func TestServiceReportsReaderFailure(t *testing.T) {
	cfg := sources.Source{ID: "s1", Name: "Source1", Type: sources.TypeFeed}
	svc := newTestService(&fakeReader{err: errors.New("no such file")}, &fakeSink{}, &fakeStore{})

	err := svc.Run(context.Background(), []sources.Source{cfg})
	if err == nil || !strings.Contains(err.Error(), "read source s1") {
		t.Fatalf("expected read error for s1, got %v", err)
	}
}

func TestServiceChecksNormalizedLinkIdentities(t *testing.T) {
	cfg := sources.Source{ID: "s1", Name: "Source1", Type: sources.TypeFeed}
	// The store knows the normalized form; the raw link still carries its
	// tracking parameter.
	store := &fakeStore{seen: map[string]bool{"https://example.com/a?id=5": true}}
	sink := &fakeSink{}

	entries := []domain.Entry{
		{Link: "https://example.com/a?utm_source=x&id=5", Title: "Hello World"},
		{Link: "https://example.com/b", Title: "Fresh"},
	}

	svc := newTestService(&fakeReader{entries: entries}, sink, store)
	if err := svc.Run(context.Background(), []sources.Source{cfg}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(sink.events))
	}
	id := sink.events[0].Identity
	if id.Kind != identity.KindLink || id.Value != "https://example.com/b" {
		t.Fatalf("unexpected identity %+v", id)
	}
}
