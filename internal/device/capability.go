package device

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Capability is a platform facility the handshake depends on.
type Capability interface {
	Name() string
	// Probe returns nil when the capability is usable.
	Probe() error
}

// Installer makes a missing capability available.
type Installer interface {
	Install(ctx context.Context, name string) error
}

// EnsureCapability probes c and, if it is unavailable, installs it once and probes again.
// Only the probe is repeated; no device operation is retried here.
func EnsureCapability(ctx context.Context, c Capability, inst Installer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	err := c.Probe()
	if err == nil {
		logger.Debug("capability available", "capability", c.Name())
		return nil
	}
	if inst == nil {
		return &CapabilityError{Name: c.Name(), Err: err}
	}

	logger.Info("installing capability", "capability", c.Name(), "reason", err)
	if ierr := inst.Install(ctx, c.Name()); ierr != nil {
		return &CapabilityError{Name: c.Name(), Err: fmt.Errorf("install: %w", ierr)}
	}

	if err := c.Probe(); err != nil {
		return &CapabilityError{Name: c.Name(), Err: err}
	}
	logger.Info("capability installed", "capability", c.Name())
	return nil
}

// ExecInstaller installs a capability by running an external command.
type ExecInstaller struct {
	Command []string
	Logger  *slog.Logger
}

// Install implements Installer.
func (e *ExecInstaller) Install(ctx context.Context, name string) error {
	if len(e.Command) == 0 {
		return fmt.Errorf("no install command configured for %s", name)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...) //nolint:gosec // command comes from project config
	cmd.Stdout = &out
	cmd.Stderr = &out

	if e.Logger != nil {
		e.Logger.Debug("running install command", "command", strings.Join(e.Command, " "))
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", strings.Join(e.Command, " "), err, strings.TrimSpace(out.String()))
	}
	return nil
}

// InstallerFunc adapts a function to the Installer interface.
type InstallerFunc func(ctx context.Context, name string) error

// Install implements Installer.
func (f InstallerFunc) Install(ctx context.Context, name string) error { return f(ctx, name) }
