package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/internal/filter"
	"github.com/leapstack-labs/adpbuild/internal/hooks"
	"github.com/leapstack-labs/adpbuild/internal/packager"
	starctx "github.com/leapstack-labs/adpbuild/internal/starlark"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// register adds, per target, a compile registration bound to its filter
// policy and a post-link registration bound to its artifact set, then the
// single pre-upload device reset.
func (e *Engine) register(targets []core.Target, pool *starctx.ThreadPool) error {
	for _, t := range targets {
		when, err := e.whenPredicate(t, pool)
		if err != nil {
			return err
		}

		policy, err := filter.ForTarget(t, e.project.VendorMarker)
		if err != nil {
			return err
		}
		if err := e.registry.Register(hooks.Registration{
			Phase:     core.PhaseCompile,
			Name:      "filter/" + t.Name,
			Predicate: hooks.All(hooks.MatchTarget(t.Name), when),
			Handler:   filterHandler(policy),
		}); err != nil {
			return err
		}

		if err := e.registry.Register(hooks.Registration{
			Phase:     core.PhasePostLink,
			Name:      "package/" + t.Name,
			Predicate: hooks.All(hooks.MatchTarget(t.Name), hooks.MatchBuilt(t.Profile.LinkOutput), when),
			Handler:   e.packageHandler(t),
		}); err != nil {
			return err
		}
	}

	return e.registry.Register(hooks.Registration{
		Phase:   core.PhasePreUpload,
		Name:    "device-reset",
		Handler: e.resetHandler,
	})
}

func (e *Engine) whenPredicate(t core.Target, pool *starctx.ThreadPool) (hooks.Predicate, error) {
	if t.When == "" {
		return nil, nil
	}
	p, err := starctx.Compile(t.Name+".when", t.When,
		starctx.WithVars(e.project.Vars),
		starctx.WithPool(pool),
	)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", t.Name, err)
	}
	return hooks.Expr(p), nil
}

func filterHandler(policy filter.Policy) hooks.Handler {
	return func(_ context.Context, ev hooks.Event) error {
		d := policy.Decide(ev.Node, ev.Flags)
		if ev.Out != nil {
			ev.Out.Decision = &d
		}
		return nil
	}
}

func (e *Engine) packageHandler(t core.Target) hooks.Handler {
	return func(ctx context.Context, ev hooks.Event) error {
		res, err := e.packager.Package(ctx, packager.Request{
			BuildDir:  ev.BuildDir,
			Env:       t.Name,
			Artifacts: t.Profile.Artifacts,
			Board:     t.Board,
		})
		if err != nil {
			return err
		}

		if err := e.store.RecordPackage(&core.PackageRecord{
			RunID:         ev.RunID,
			Environment:   t.Name,
			Path:          res.Path,
			BoardIdentity: t.Board,
			SHA256:        res.SHA256,
			Size:          res.Size,
			Members:       res.Members,
		}); err != nil {
			// An unrecorded package must not be left looking valid.
			if rmErr := os.Remove(res.Path); rmErr != nil && !os.IsNotExist(rmErr) {
				e.logger.Warn("failed to remove unrecorded package", "path", res.Path, "error", rmErr)
			}
			return fmt.Errorf("record package %s: %w", res.Path, err)
		}

		if ev.Out != nil {
			ev.Out.Package = res
		}
		return nil
	}
}

func (e *Engine) resetHandler(ctx context.Context, ev hooks.Event) error {
	if err := device.EnsureCapability(ctx, e.capability, e.installer, e.logger); err != nil {
		return err
	}

	id, err := e.resetter.Reset(ctx)
	if err != nil {
		return err
	}

	if err := e.store.RecordReset(&core.ResetRecord{
		RunID:        ev.RunID,
		Manufacturer: id.Manufacturer,
		Product:      id.Product,
		Serial:       id.Serial,
	}); err != nil {
		return err
	}

	if ev.Out != nil {
		ev.Out.Identity = &id
	}
	return nil
}
