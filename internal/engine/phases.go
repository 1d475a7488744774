package engine

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/internal/filter"
	"github.com/leapstack-labs/adpbuild/internal/hooks"
	"github.com/leapstack-labs/adpbuild/internal/packager"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// FilterResult is the compile-phase outcome for one batch of nodes.
type FilterResult struct {
	RunID     string            `json:"run_id"`
	Decisions []filter.Decision `json:"decisions"`
	Summary   filter.Summary    `json:"summary"`
}

// Filter decides every candidate node for env. Nodes no registration
// claims are kept unchanged. The batch fails with core.ErrEmptyVendorBuild
// when a selective target compiled none of the vendored files it saw.
func (e *Engine) Filter(ctx context.Context, env string, nodes []core.CandidateNode, ambient []string) (*FilterResult, error) {
	t, err := e.Target(env)
	if err != nil {
		return nil, err
	}

	var out *FilterResult
	err = e.withRun(core.PhaseCompile, env, func(runID string) error {
		decide := func(ctx context.Context, node core.CandidateNode, ambient []string) (filter.Decision, error) {
			outcome := &hooks.Outcome{}
			_, err := e.registry.Dispatch(ctx, hooks.Event{
				Phase:    core.PhaseCompile,
				Target:   &t,
				BuildDir: e.buildDir,
				RunID:    runID,
				Out:      outcome,
				Node:     node,
				Flags:    ambient,
			})
			if err != nil {
				return filter.Decision{}, err
			}
			if outcome.Decision == nil {
				return filter.Keep(node), nil
			}
			return *outcome.Decision, nil
		}

		decisions, sum, err := filter.New(nil, e.workers).RunFunc(ctx, nodes, ambient, decide)
		if err != nil {
			return err
		}
		out = &FilterResult{RunID: runID, Decisions: decisions, Summary: sum}

		e.logger.Info("sources filtered",
			"env", env,
			"total", sum.Total,
			"vendored", sum.Vendored,
			"compiled", sum.Compiled,
			"excluded", sum.Excluded)
		return sum.Check(t.Policy)
	})
	return out, err
}

// PostLink handles the completion of built for env. It returns the
// package created, or nil when no registration matched built.
func (e *Engine) PostLink(ctx context.Context, env, buildDir, built string) (*packager.Result, error) {
	t, err := e.Target(env)
	if err != nil {
		return nil, err
	}
	if buildDir == "" {
		buildDir = e.buildDir
	}

	outcome := &hooks.Outcome{}
	err = e.withRun(core.PhasePostLink, env, func(runID string) error {
		_, err := e.registry.Dispatch(ctx, hooks.Event{
			Phase:    core.PhasePostLink,
			Target:   &t,
			BuildDir: buildDir,
			RunID:    runID,
			Out:      outcome,
			Built:    built,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome.Package, nil
}

// PreUpload makes sure the device backend is available, then resets the
// attached pad into its bootloader.
func (e *Engine) PreUpload(ctx context.Context, env string) (*device.Identity, error) {
	t, err := e.Target(env)
	if err != nil {
		return nil, err
	}

	outcome := &hooks.Outcome{}
	err = e.withRun(core.PhasePreUpload, env, func(runID string) error {
		_, err := e.registry.Dispatch(ctx, hooks.Event{
			Phase:    core.PhasePreUpload,
			Target:   &t,
			BuildDir: e.buildDir,
			RunID:    runID,
			Out:      outcome,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome.Identity, nil
}

// withRun records fn as one ledger run.
func (e *Engine) withRun(phase core.Phase, env string, fn func(runID string) error) error {
	run, err := e.store.CreateRun(phase, env)
	if err != nil {
		return err
	}

	runErr := fn(run.ID)

	status, msg := core.RunStatusCompleted, ""
	if runErr != nil {
		status, msg = core.RunStatusFailed, runErr.Error()
	}
	if err := e.store.CompleteRun(run.ID, status, msg); err != nil {
		if runErr != nil {
			return fmt.Errorf("%w (ledger: %v)", runErr, err)
		}
		return err
	}

	if runErr != nil {
		e.logger.Debug("run failed", "run_id", run.ID, "phase", phase, "error", runErr)
	}
	return runErr
}
