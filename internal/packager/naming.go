package packager

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// DefaultExtension is the file extension of release packages.
const DefaultExtension = "adpf"

// NamingPolicy decides where a package is written inside the build directory.
type NamingPolicy interface {
	PackagePath(buildDir, env string) (string, error)
}

// EnvironmentNaming names the package after the build environment: <build-dir>/<env>.<ext>.
type EnvironmentNaming struct {
	Ext string
}

// PackagePath implements NamingPolicy.
func (n EnvironmentNaming) PackagePath(buildDir, env string) (string, error) {
	if env == "" {
		return "", fmt.Errorf("environment naming requires an environment name")
	}
	ext := strings.TrimPrefix(n.Ext, ".")
	if ext == "" {
		ext = DefaultExtension
	}
	return filepath.Join(buildDir, env+"."+ext), nil
}

// FixedNaming always writes <build-dir>/<Name>.
type FixedNaming struct {
	Name string
}

// PackagePath implements NamingPolicy.
func (n FixedNaming) PackagePath(buildDir, _ string) (string, error) {
	if n.Name == "" || filepath.Base(n.Name) != n.Name {
		return "", fmt.Errorf("fixed package name must be a bare filename, got %q", n.Name)
	}
	return filepath.Join(buildDir, n.Name), nil
}

// NamingFromConfig builds the naming policy described by cfg.
func NamingFromConfig(cfg core.PackageConfig) (NamingPolicy, error) {
	switch cfg.Naming {
	case "", "environment":
		return EnvironmentNaming{Ext: cfg.Extension}, nil
	case "fixed":
		name := cfg.FixedName
		if name == "" {
			ext := cfg.Extension
			if ext == "" {
				ext = DefaultExtension
			}
			name = "firmware." + strings.TrimPrefix(ext, ".")
		}
		return FixedNaming{Name: name}, nil
	default:
		return nil, fmt.Errorf("unknown package naming %q (expected environment or fixed)", cfg.Naming)
	}
}
