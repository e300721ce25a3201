package plugin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lumen-sh/lumen/internal/applog"
	"github.com/lumen-sh/lumen/internal/entry"
)

// ScriptRunner executes one script unit in a sandbox and returns the name
// the script registered plus its entry forest. Implemented by luaplug.
type ScriptRunner interface {
	Run(ctx context.Context, unit *Unit) (name string, entries []*entry.Entry, err error)
}

// Registry orchestrates plugin unit execution and corpus assembly. Units
// run concurrently; the merge is a serial reduction in discovery order, so
// corpus ordering is reproducible regardless of scheduling.
type Registry struct {
	runner  ScriptRunner
	log     *applog.Logger
	workers int
	gen     atomic.Uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithWorkers caps the number of units executing concurrently.
func WithWorkers(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewRegistry creates a registry using the given script runner.
func NewRegistry(runner ScriptRunner, log *applog.Logger, opts ...Option) *Registry {
	r := &Registry{
		runner:  runner,
		log:     log.WithComponent("registry"),
		workers: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// outcome holds one unit's execution result, kept per-ordinal so the merge
// can run in discovery order.
type outcome struct {
	name    string
	entries []*entry.Entry
	// diag is a non-fatal per-unit diagnostic: the unit's surviving
	// entries still join the corpus.
	diag *Error
	err  *Error
}

// Build runs every unit through the sandbox and assembles a corpus from the
// successful ones. It never fails as a whole: per-unit failures become
// diagnostics and the unit's entries are excluded.
//
// Calling Build again discards the previous corpus entirely; the returned
// corpus carries a generation number so callers can drop results of a
// superseded build.
func (r *Registry) Build(ctx context.Context, units []*Unit) *Corpus {
	outcomes := make([]outcome, len(units))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for i, u := range units {
		u.transition(StatusRunning, nil)
		wg.Add(1)
		go func(i int, u *Unit) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = r.runUnit(ctx, u)
		}(i, u)
	}
	wg.Wait()

	corpus := &Corpus{
		Generation: r.gen.Add(1),
		index:      make(map[entry.ID]int),
	}

	for i, u := range units {
		out := outcomes[i]
		if out.err != nil {
			u.transition(StatusFailed, out.err)
			corpus.diags = append(corpus.diags, out.err)
			r.log.Warn("plugin failed: %v", out.err)
			continue
		}
		if out.diag != nil {
			corpus.diags = append(corpus.diags, out.diag)
			r.log.Warn("plugin degraded: %v", out.diag)
		}
		u.transition(StatusSucceeded, nil)
		corpus.flatten(i, out.name, out.entries)
	}

	r.log.Info("built corpus: %d entries from %d units (%d failed)",
		corpus.Len(), len(units), len(corpus.diags))
	return corpus
}

// runUnit executes a single unit, converting every fault, including panics
// from native providers, into a diagnostic.
func (r *Registry) runUnit(ctx context.Context, u *Unit) (out outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = outcome{err: &Error{
				Unit: u.Name,
				Kind: KindRuntime,
				Err:  fmt.Errorf("panic: %v", rec),
			}}
		}
	}()

	if u.Provider != nil {
		entries, err := u.Provider.Entries(ctx)
		if err != nil {
			return outcome{err: classify(u.Provider.Name(), err)}
		}
		return outcome{name: u.Provider.Name(), entries: entries}
	}

	name, entries, err := r.runner.Run(ctx, u)
	if name == "" {
		name = u.Name
	}
	if err != nil {
		perr := classify(u.Name, err)
		// A unit that registered usable entries alongside invalid ones is
		// degraded, not failed.
		if perr.Kind == KindInvalidEntry && len(entries) > 0 {
			return outcome{name: name, entries: entries, diag: perr}
		}
		return outcome{err: perr}
	}
	return outcome{name: name, entries: entries}
}
