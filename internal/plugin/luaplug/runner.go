package luaplug

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/lumen-sh/lumen/internal/applog"
	"github.com/lumen-sh/lumen/internal/entry"
	"github.com/lumen-sh/lumen/internal/plugin"
)

// DefaultTimeout bounds a single unit's execution. Plugins are expected to
// be short-lived; anything slower is reported as a timeout diagnostic.
const DefaultTimeout = 5 * time.Second

// Runner executes script units. Each Run gets a fresh sandboxed state, so
// units share nothing and a fault in one can never poison another.
type Runner struct {
	caps    Capabilities
	timeout time.Duration
	log     *applog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCapabilities replaces the OS-backed capability provider.
func WithCapabilities(caps Capabilities) RunnerOption {
	return func(r *Runner) {
		r.caps = caps
	}
}

// WithTimeout sets the per-unit execution deadline. Zero disables it.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a script runner.
func NewRunner(log *applog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		caps:    OSCapabilities{},
		timeout: DefaultTimeout,
		log:     log.WithComponent("luaplug"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one script unit and returns the name and entry forest it
// registered. All faults come back as *plugin.Error values; Run never
// panics and never lets a script fault escape.
func (r *Runner) Run(ctx context.Context, unit *plugin.Unit) (name string, entries []*entry.Entry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &plugin.Error{
				Unit: unit.Name,
				Kind: plugin.KindRuntime,
				Err:  fmt.Errorf("lua panic: %v", rec),
			}
		}
	}()

	L := newState()
	defer L.Close()

	reg := &registration{}
	install(L, r.caps, reg)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	L.SetContext(ctx)

	fn, lerr := r.compile(L, unit)
	if lerr != nil {
		return "", nil, &plugin.Error{Unit: unit.Name, Kind: plugin.KindLoad, Err: lerr}
	}

	L.Push(fn)
	if perr := L.PCall(0, 0, nil); perr != nil {
		kind := plugin.KindRuntime
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = plugin.KindTimeout
		}
		return "", nil, &plugin.Error{Unit: unit.Name, Kind: kind, Err: perr}
	}

	switch {
	case reg.calls == 0:
		return "", nil, &plugin.Error{
			Unit: unit.Name,
			Kind: plugin.KindRegistration,
			Err:  errors.New("script did not call plugin()"),
		}
	case reg.calls > 1:
		return "", nil, &plugin.Error{
			Unit: unit.Name,
			Kind: plugin.KindRegistration,
			Err:  fmt.Errorf("script called plugin() %d times", reg.calls),
		}
	}

	name, entries, diag, derr := decodeRegistration(reg.payload)
	if derr != nil {
		derr.Unit = unit.Name
		return "", nil, derr
	}
	if diag != nil {
		// Invalid entries were dropped; the survivors still count. The
		// registry records the diagnostic without failing the unit.
		diag.Unit = unit.Name
		return name, entries, diag
	}

	r.log.Debug("unit %q registered %d top-level entries as %q", unit.Name, len(entries), name)
	return name, entries, nil
}

// compile loads the unit's source without running it.
func (r *Runner) compile(L *lua.LState, unit *plugin.Unit) (*lua.LFunction, error) {
	if unit.Source != "" {
		return L.LoadString(unit.Source)
	}
	return L.LoadFile(unit.Script)
}
