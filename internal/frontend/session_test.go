package frontend

import (
	"context"
	"errors"
	"testing"

	"github.com/lumen-sh/lumen/internal/applog"
	"github.com/lumen-sh/lumen/internal/dispatch"
	"github.com/lumen-sh/lumen/internal/entry"
	"github.com/lumen-sh/lumen/internal/plugin"
)

// scriptBackend replays a fixed event sequence and records every view it is
// asked to render.
type scriptBackend struct {
	events []Event
	views  []View
	closed bool
}

func (b *scriptBackend) Init() error { return nil }
func (b *scriptBackend) Close()      { b.closed = true }

func (b *scriptBackend) Render(view View) {
	b.views = append(b.views, view)
}

func (b *scriptBackend) PollEvent() Event {
	if len(b.events) == 0 {
		return Event{Type: EventCancel}
	}
	ev := b.events[0]
	b.events = b.events[1:]
	return ev
}

type recordingSpawner struct {
	argv [][]string
	err  error
}

func (s *recordingSpawner) Spawn(argv []string) (*dispatch.Handle, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.argv = append(s.argv, argv)
	return &dispatch.Handle{PID: 42}, nil
}

type staticProvider struct {
	name    string
	entries []*entry.Entry
	err     error
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) Entries(context.Context) ([]*entry.Entry, error) {
	return p.entries, p.err
}

func mustEntry(t *testing.T, name, exec string, terms []string) *entry.Entry {
	t.Helper()
	e, err := entry.New(name, exec, terms, 0, nil)
	if err != nil {
		t.Fatalf("entry.New(%q): %v", name, err)
	}
	return e
}

func newTestSession(t *testing.T, backend Backend, spawner dispatch.Spawner, cfg SessionConfig, units ...*plugin.Unit) *Session {
	t.Helper()
	log := applog.Discard()
	registry := plugin.NewRegistry(nil, log)
	dispatcher := dispatch.NewDispatcher(spawner, "", log)
	return NewSession(registry, units, dispatcher, backend, cfg, log)
}

func firefoxUnits(t *testing.T) []*plugin.Unit {
	t.Helper()
	return []*plugin.Unit{
		{Name: "apps", Provider: &staticProvider{
			name: "apps",
			entries: []*entry.Entry{
				mustEntry(t, "Firefox", "firefox", nil),
				mustEntry(t, "Files", "nautilus", nil),
				mustEntry(t, "Terminal", "foot", nil),
			},
		}},
	}
}

func TestSessionActivateLaunchesAndExits(t *testing.T) {
	backend := &scriptBackend{events: []Event{
		{Type: EventQueryChanged, Query: "fire"},
		{Type: EventActivate},
	}}
	spawner := &recordingSpawner{}

	s := newTestSession(t, backend, spawner, SessionConfig{}, firefoxUnits(t)...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(spawner.argv) != 1 {
		t.Fatalf("spawned %d commands, want 1", len(spawner.argv))
	}
	if got := spawner.argv[0][0]; got != "firefox" {
		t.Errorf("spawned %q, want firefox", got)
	}
	if !backend.closed {
		t.Error("backend not closed")
	}
}

func TestSessionStayResidentKeepsRunning(t *testing.T) {
	backend := &scriptBackend{events: []Event{
		{Type: EventActivate},
		{Type: EventActivate},
		{Type: EventCancel},
	}}
	spawner := &recordingSpawner{}

	s := newTestSession(t, backend, spawner, SessionConfig{StayResident: true}, firefoxUnits(t)...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(spawner.argv) != 2 {
		t.Errorf("spawned %d commands, want 2", len(spawner.argv))
	}
}

func TestSessionLaunchFailureSurfacesStatus(t *testing.T) {
	backend := &scriptBackend{events: []Event{
		{Type: EventActivate},
		{Type: EventCancel},
	}}
	spawner := &recordingSpawner{err: errors.New("exec format error")}

	s := newTestSession(t, backend, spawner, SessionConfig{}, firefoxUnits(t)...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	last := backend.views[len(backend.views)-1]
	if last.Status == "" {
		t.Error("launch failure did not set status")
	}
}

func TestSessionEmptyQueryShowsAllEntries(t *testing.T) {
	backend := &scriptBackend{events: []Event{{Type: EventCancel}}}

	s := newTestSession(t, backend, &recordingSpawner{}, SessionConfig{}, firefoxUnits(t)...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := backend.views[0]
	if len(first.Rows) != 3 {
		t.Fatalf("initial view has %d rows, want 3", len(first.Rows))
	}
	want := []string{"Firefox", "Files", "Terminal"}
	for i, w := range want {
		if first.Rows[i].Name != w {
			t.Errorf("row %d = %q, want %q", i, first.Rows[i].Name, w)
		}
	}
	if first.Selected != 0 {
		t.Errorf("Selected = %d, want 0", first.Selected)
	}
}

func TestSessionListSizeCapsRows(t *testing.T) {
	backend := &scriptBackend{events: []Event{{Type: EventCancel}}}

	s := newTestSession(t, backend, &recordingSpawner{}, SessionConfig{ListSize: 2}, firefoxUnits(t)...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := backend.views[0]
	if len(first.Rows) != 2 {
		t.Errorf("view has %d rows, want 2", len(first.Rows))
	}
	if first.Total != 3 {
		t.Errorf("Total = %d, want 3", first.Total)
	}
}

func TestSessionSelectionClamped(t *testing.T) {
	backend := &scriptBackend{events: []Event{
		{Type: EventSelectionMoved, Delta: 10},
		{Type: EventSelectionMoved, Delta: -20},
		{Type: EventCancel},
	}}

	s := newTestSession(t, backend, &recordingSpawner{}, SessionConfig{}, firefoxUnits(t)...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := backend.views[1].Selected; got != 2 {
		t.Errorf("after +10: Selected = %d, want 2", got)
	}
	if got := backend.views[2].Selected; got != 0 {
		t.Errorf("after -20: Selected = %d, want 0", got)
	}
}

func TestSessionRefreshRebuildsCorpus(t *testing.T) {
	backend := &scriptBackend{events: []Event{
		{Type: EventRefresh},
		{Type: EventCancel},
	}}

	provider := &staticProvider{name: "apps", entries: []*entry.Entry{
		mustEntry(t, "Firefox", "firefox", nil),
	}}
	s := newTestSession(t, backend, &recordingSpawner{}, SessionConfig{},
		&plugin.Unit{Name: "apps", Provider: provider})

	ctx := context.Background()
	s.rebuild(ctx)
	firstGen := s.corpus.Generation

	// Later units appear after a refresh.
	provider.entries = append(provider.entries, mustEntry(t, "Files", "nautilus", nil))

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.corpus.Generation <= firstGen {
		t.Errorf("generation did not advance: %d -> %d", firstGen, s.corpus.Generation)
	}
	last := backend.views[len(backend.views)-1]
	if len(last.Rows) != 2 {
		t.Errorf("after refresh: %d rows, want 2", len(last.Rows))
	}
}

func TestSessionFailedUnitSetsStatus(t *testing.T) {
	backend := &scriptBackend{events: []Event{{Type: EventCancel}}}

	units := []*plugin.Unit{
		{Name: "good", Provider: &staticProvider{
			name:    "good",
			entries: []*entry.Entry{mustEntry(t, "Firefox", "firefox", nil)},
		}},
		{Name: "bad", Provider: &staticProvider{
			name: "bad",
			err:  errors.New("boom"),
		}},
	}
	s := newTestSession(t, backend, &recordingSpawner{}, SessionConfig{}, units...)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := backend.views[0]
	if first.Status == "" {
		t.Error("failed unit did not set status")
	}
	if len(first.Rows) != 1 {
		t.Errorf("view has %d rows, want 1", len(first.Rows))
	}
}
