//go:build governance

package core_test

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/adpbuild"

func loadModule(t *testing.T) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}
	return pkgs
}

// =============================================================================
// LAYERING TEST - only cmd/ may reach into the CLI
// =============================================================================

// The hook components (filter, packager, device) must stay independent of
// each other; they meet only in the engine.
var isolated = []string{"internal/filter", "internal/packager", "internal/device"}

func TestGovernance_Layering(t *testing.T) {
	base := modulePath + "/"
	for _, p := range loadModule(t) {
		rel := strings.TrimPrefix(p.PkgPath, base)

		for path := range p.Imports {
			dep := strings.TrimPrefix(path, base)
			if dep == path {
				continue
			}

			if strings.HasPrefix(dep, "internal/cli") && !strings.HasPrefix(rel, "internal/cli") && !strings.HasPrefix(rel, "cmd/") {
				t.Errorf("LAYERING VIOLATION: '%s' imports '%s'.", rel, dep)
			}

			for _, a := range isolated {
				for _, b := range isolated {
					if a != b && strings.HasPrefix(rel, a) && strings.HasPrefix(dep, b) {
						t.Errorf("ISOLATION VIOLATION: '%s' imports '%s'.\n"+
							"   Fix: Route the interaction through internal/hooks.", rel, dep)
					}
				}
			}
		}
	}
}
