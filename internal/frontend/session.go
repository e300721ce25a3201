package frontend

import (
	"context"
	"fmt"

	"github.com/lumen-sh/lumen/internal/applog"
	"github.com/lumen-sh/lumen/internal/dispatch"
	"github.com/lumen-sh/lumen/internal/plugin"
	"github.com/lumen-sh/lumen/internal/search"
)

// SessionConfig holds the frontend-facing knobs.
type SessionConfig struct {
	// ListSize caps the number of rendered rows. Zero means unbounded.
	ListSize int

	// StayResident keeps the session alive after a successful launch
	// instead of exiting.
	StayResident bool

	// CacheSize is the matcher's memoization capacity.
	CacheSize int
}

// Session owns the launcher's interactive state: the current corpus and
// matcher, the query text, and the selection. It drives a Backend in a
// render/poll loop and delegates launches to the dispatcher.
type Session struct {
	registry   *plugin.Registry
	units      []*plugin.Unit
	dispatcher *dispatch.Dispatcher
	backend    Backend
	cfg        SessionConfig
	log        *applog.Logger

	corpus   *plugin.Corpus
	matcher  *search.Matcher
	query    string
	selected int
	results  []search.Result
	status   string
}

// NewSession wires a session. Run performs the initial corpus build.
func NewSession(registry *plugin.Registry, units []*plugin.Unit, dispatcher *dispatch.Dispatcher, backend Backend, cfg SessionConfig, log *applog.Logger) *Session {
	return &Session{
		registry:   registry,
		units:      units,
		dispatcher: dispatcher,
		backend:    backend,
		cfg:        cfg,
		log:        log.WithComponent("session"),
	}
}

// Run executes the session loop until the user cancels, an entry launches
// (unless StayResident is set), or the context is done.
func (s *Session) Run(ctx context.Context) error {
	if err := s.backend.Init(); err != nil {
		return fmt.Errorf("frontend init: %w", err)
	}
	defer s.backend.Close()

	s.rebuild(ctx)
	s.requery()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.backend.Render(s.view())

		switch ev := s.backend.PollEvent(); ev.Type {
		case EventQueryChanged:
			s.query = ev.Query
			s.requery()

		case EventSelectionMoved:
			s.moveSelection(ev.Delta)

		case EventActivate:
			done, err := s.activate()
			if err != nil {
				s.status = err.Error()
				continue
			}
			if done {
				return nil
			}

		case EventRefresh:
			s.rebuild(ctx)
			s.requery()

		case EventCancel:
			return nil
		}
	}
}

// rebuild runs all units and adopts the resulting corpus. A corpus older
// than the one already adopted is discarded, so overlapping rebuilds can
// never roll state backwards.
func (s *Session) rebuild(ctx context.Context) {
	corpus := s.registry.Build(ctx, s.units)
	if s.corpus != nil && corpus.Generation <= s.corpus.Generation {
		s.log.Warn("discarding stale corpus generation %d", corpus.Generation)
		return
	}

	s.corpus = corpus
	s.matcher = search.NewMatcher(corpus, search.Options{
		Limit:     0,
		CacheSize: s.cfg.CacheSize,
	})

	s.status = ""
	if n := len(corpus.Diagnostics()); n > 0 {
		s.status = fmt.Sprintf("%d plugin(s) failed; see log", n)
	}
}

// requery re-ranks the corpus for the current query and resets the
// selection to the top hit.
func (s *Session) requery() {
	s.results = s.matcher.Query(s.query)
	if len(s.results) == 0 {
		s.selected = -1
		return
	}
	s.selected = 0
}

func (s *Session) moveSelection(delta int) {
	visible := s.visibleCount()
	if visible == 0 {
		s.selected = -1
		return
	}
	s.selected += delta
	if s.selected < 0 {
		s.selected = 0
	}
	if s.selected >= visible {
		s.selected = visible - 1
	}
}

// activate launches the selected entry. It reports done=true when the
// session should exit.
func (s *Session) activate() (done bool, err error) {
	if s.selected < 0 || s.selected >= len(s.results) {
		return false, nil
	}

	rec, ok := s.corpus.Lookup(s.results[s.selected].ID)
	if !ok {
		return false, fmt.Errorf("selection no longer in corpus")
	}

	if _, err := s.dispatcher.Launch(rec.Entry); err != nil {
		return false, err
	}
	return !s.cfg.StayResident, nil
}

func (s *Session) visibleCount() int {
	n := len(s.results)
	if s.cfg.ListSize > 0 && n > s.cfg.ListSize {
		n = s.cfg.ListSize
	}
	return n
}

// view snapshots the render state for the backend.
func (s *Session) view() View {
	visible := s.visibleCount()
	rows := make([]Row, 0, visible)
	for _, res := range s.results[:visible] {
		rec, ok := s.corpus.Lookup(res.ID)
		if !ok {
			continue
		}
		rows = append(rows, Row{
			ID:     rec.ID,
			Name:   rec.Entry.Name,
			Exec:   rec.Entry.Exec,
			Plugin: rec.Plugin,
			Score:  res.Score,
		})
	}

	selected := s.selected
	if selected >= len(rows) {
		selected = len(rows) - 1
	}

	return View{
		Query:    s.query,
		Rows:     rows,
		Selected: selected,
		Total:    len(s.results),
		Status:   s.status,
	}
}
