// Package engine wires the build hooks together: it resolves targets from
// the project configuration, registers the filter, packager and device
// reset with the hook dispatcher, and records every phase in the ledger.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/adpbuild/internal/config"
	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/internal/device/hidraw"
	"github.com/leapstack-labs/adpbuild/internal/hooks"
	"github.com/leapstack-labs/adpbuild/internal/packager"
	starctx "github.com/leapstack-labs/adpbuild/internal/starlark"
	"github.com/leapstack-labs/adpbuild/internal/state"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Engine dispatches build events for the configured targets.
type Engine struct {
	logger *slog.Logger

	store    core.Store
	registry *hooks.Registry
	project  *config.ProjectConfig
	targets  map[string]core.Target
	buildDir string
	workers  int

	packager   *packager.Packager
	resetter   *device.Resetter
	capability device.Capability
	installer  device.Installer
}

// Config holds engine configuration.
type Config struct {
	// Project holds targets, device identity and package naming. Required.
	Project *config.ProjectConfig
	// BuildDir is the default build output directory
	BuildDir string
	// StatePath is the path to the SQLite ledger; "" or ":memory:" keeps it in memory
	StatePath string
	// Workers bounds compile-phase parallelism; <= 0 uses GOMAXPROCS
	Workers int

	// Opener, Capability and Installer reach the pad. Nil values select the
	// hidraw backend and the configured install command.
	Opener     device.Opener
	Capability device.Capability
	Installer  device.Installer

	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Clock stamps package entries (optional)
	Clock func() time.Time
}

// New resolves the targets, opens the ledger and builds the hook registry.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Project == nil {
		return nil, fmt.Errorf("engine: project configuration is required")
	}

	targets, err := cfg.Project.ResolveTargets()
	if err != nil {
		return nil, err
	}

	naming, err := packager.NamingFromConfig(cfg.Project.Package)
	if err != nil {
		return nil, err
	}
	pkgOpts := []packager.Option{packager.WithLogger(logger)}
	if cfg.Clock != nil {
		pkgOpts = append(pkgOpts, packager.WithClock(cfg.Clock))
	}

	opener := cfg.Opener
	if opener == nil {
		opener = hidraw.NewOpener()
	}
	capability := cfg.Capability
	if capability == nil {
		capability = &hidraw.Capability{}
	}
	installer := cfg.Installer
	if installer == nil && len(cfg.Project.Device.InstallCommand) > 0 {
		installer = &device.ExecInstaller{Command: cfg.Project.Device.InstallCommand, Logger: logger}
	}

	e := &Engine{
		logger:   logger,
		registry: hooks.NewRegistry(logger),
		project:  cfg.Project,
		targets:  make(map[string]core.Target, len(targets)),
		buildDir: cfg.BuildDir,
		workers:  cfg.Workers,
		packager: packager.New(naming, pkgOpts...),
		resetter: device.NewResetter(opener,
			device.WithIdentity(cfg.Project.Device.VendorID, cfg.Project.Device.ProductID),
			device.WithReportID(cfg.Project.Device.ResetReportID),
			device.WithLogger(logger),
		),
		capability: capability,
		installer:  installer,
	}
	for _, t := range targets {
		e.targets[t.Name] = t
	}

	pool := starctx.NewThreadPool(0)
	if err := e.register(targets, pool); err != nil {
		return nil, err
	}

	store, err := openStore(cfg.StatePath, logger)
	if err != nil {
		return nil, err
	}
	e.store = store

	logger.Debug("engine ready", "targets", len(targets), "state", cfg.StatePath)
	return e, nil
}

func openStore(path string, logger *slog.Logger) (*state.SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	return store, nil
}

// Close releases the ledger.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Target returns the resolved target named env.
func (e *Engine) Target(env string) (core.Target, error) {
	t, ok := e.targets[env]
	if !ok {
		return core.Target{}, fmt.Errorf("%q: %w", env, core.ErrUnknownTarget)
	}
	return t, nil
}

// Targets returns every resolved target, sorted by name.
func (e *Engine) Targets() []core.Target {
	out := make([]core.Target, 0, len(e.targets))
	for _, name := range e.project.TargetNames() {
		out = append(out, e.targets[name])
	}
	return out
}

// Store returns the ledger.
func (e *Engine) Store() core.Store {
	return e.store
}

// Registry returns the hook registry, for callers adding their own hooks.
func (e *Engine) Registry() *hooks.Registry {
	return e.registry
}
