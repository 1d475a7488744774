// Package config provides the project configuration shared by the CLI and
// the engine: targets, device identity, package naming and predicate vars.
package config

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/adpbuild/internal/packager"
	starctx "github.com/leapstack-labs/adpbuild/internal/starlark"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// ProjectConfig is the project-level part of adpbuild.yaml.
type ProjectConfig struct {
	VendorMarker string                       `koanf:"vendor_marker"`
	Targets      map[string]core.TargetConfig `koanf:"targets"`
	Device       core.DeviceConfig            `koanf:"device"`
	Package      core.PackageConfig           `koanf:"package"`
	Vars         map[string]any               `koanf:"vars"`
}

// TargetNames returns the configured target names, sorted.
func (c *ProjectConfig) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveTarget turns the named TargetConfig into a core.Target. The
// architecture's built-in profile is the starting point; non-empty
// allow_list, defines, artifacts and link_output entries replace its parts.
func (c *ProjectConfig) ResolveTarget(name string) (core.Target, error) {
	tc, ok := c.Targets[name]
	if !ok {
		return core.Target{}, fmt.Errorf("%q (configured: %v): %w", name, c.TargetNames(), core.ErrUnknownTarget)
	}
	return ResolveTargetConfig(name, tc)
}

// ResolveTargets resolves every configured target, sorted by name.
func (c *ProjectConfig) ResolveTargets() ([]core.Target, error) {
	out := make([]core.Target, 0, len(c.Targets))
	for _, name := range c.TargetNames() {
		t, err := c.ResolveTarget(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ResolveTargetConfig validates tc and builds the target named name.
func ResolveTargetConfig(name string, tc core.TargetConfig) (core.Target, error) {
	arch, err := core.ParseArchitecture(tc.Arch)
	if err != nil {
		return core.Target{}, fmt.Errorf("target %q: %w", name, err)
	}

	board := core.BoardIdentity(tc.Board)
	if !board.Valid() {
		return core.Target{}, fmt.Errorf("target %q: %w", name, core.ErrMissingBoardIdentity)
	}

	policyName := tc.Filter
	if policyName == "" {
		policyName = DefaultFilterFor(arch)
	}
	policy, err := core.ParseFilterPolicy(policyName)
	if err != nil {
		return core.Target{}, fmt.Errorf("target %q: %w", name, err)
	}

	profile, err := core.BuiltinProfile(arch)
	if err != nil {
		return core.Target{}, fmt.Errorf("target %q: %w", name, err)
	}
	if len(tc.AllowList) > 0 {
		profile.AllowList = core.NewAllowList(tc.AllowList...)
	}
	if len(tc.Defines) > 0 {
		profile.Defines = core.NewDefineSet(tc.Defines...)
	}
	if len(tc.Artifacts) > 0 {
		profile.Artifacts = core.NewArtifactSet(tc.Artifacts...)
	}
	if tc.LinkOutput != "" {
		profile.LinkOutput = tc.LinkOutput
	}
	if _, err := packager.MemberNames(profile.Artifacts); err != nil {
		return core.Target{}, fmt.Errorf("target %q: %w", name, err)
	}

	if tc.When != "" {
		if _, err := starctx.Compile(name+".when", tc.When); err != nil {
			return core.Target{}, fmt.Errorf("target %q: %w", name, err)
		}
	}

	return core.Target{
		Name:    name,
		Arch:    arch,
		Board:   board,
		Policy:  policy,
		Profile: profile,
		When:    tc.When,
	}, nil
}

// Validate checks everything that can be checked without touching the
// filesystem or the bus.
func (c *ProjectConfig) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("no targets configured")
	}
	if _, err := c.ResolveTargets(); err != nil {
		return err
	}
	if _, err := packager.NamingFromConfig(c.Package); err != nil {
		return fmt.Errorf("package: %w", err)
	}
	if c.Device.VendorID == 0 || c.Device.ProductID == 0 {
		return fmt.Errorf("device: vendor_id and product_id are required")
	}
	if err := starctx.Validate(c.Vars); err != nil {
		return err
	}
	return nil
}
