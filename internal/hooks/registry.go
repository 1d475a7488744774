package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Handler performs the work of a registration.
type Handler func(ctx context.Context, e Event) error

// Registration binds a handler to a phase and predicate.
type Registration struct {
	Phase     core.Phase
	Name      string
	Predicate Predicate
	Handler   Handler
}

// Registry is an ordered list of registrations.
// Register and Dispatch may be called concurrently.
type Registry struct {
	mu     sync.RWMutex
	regs   []Registration
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{logger: logger}
}

// Register appends r. A nil predicate accepts every event.
func (r *Registry) Register(reg Registration) error {
	if reg.Handler == nil {
		return fmt.Errorf("registration %q: nil handler", reg.Name)
	}
	if _, err := core.ParsePhase(string(reg.Phase)); err != nil {
		return fmt.Errorf("registration %q: %w", reg.Name, err)
	}
	if reg.Predicate == nil {
		reg.Predicate = Always()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, reg)
	return nil
}

// Registrations returns a copy of the registrations for phase, in order.
func (r *Registry) Registrations(phase core.Phase) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Registration
	for _, reg := range r.regs {
		if reg.Phase == phase {
			out = append(out, reg)
		}
	}
	return out
}

// Dispatch runs every registration whose phase matches and whose predicate
// accepts e, in registration order. The first predicate or handler error
// stops the dispatch. It returns the number of handlers run.
func (r *Registry) Dispatch(ctx context.Context, e Event) (int, error) {
	ran := 0
	for _, reg := range r.Registrations(e.Phase) {
		if err := ctx.Err(); err != nil {
			return ran, err
		}

		ok, err := reg.Predicate(e)
		if err != nil {
			return ran, &DispatchError{Phase: e.Phase, Name: reg.Name, Err: err}
		}
		if !ok {
			continue
		}

		r.logger.Debug("dispatching hook", "phase", e.Phase, "hook", reg.Name, "env", e.Env())
		ran++
		if err := reg.Handler(ctx, e); err != nil {
			return ran, &DispatchError{Phase: e.Phase, Name: reg.Name, Err: err}
		}
	}

	if ran == 0 {
		r.logger.Debug("no hook matched", "phase", e.Phase, "env", e.Env())
	}
	return ran, nil
}

// DispatchError wraps the failure of one registration.
type DispatchError struct {
	Phase core.Phase
	Name  string
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s hook %q: %v", e.Phase, e.Name, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// IsDispatchError reports whether err came from a registration.
func IsDispatchError(err error) bool {
	var de *DispatchError
	return errors.As(err, &de)
}
