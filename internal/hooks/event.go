package hooks

import (
	"path/filepath"

	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/internal/filter"
	"github.com/leapstack-labs/adpbuild/internal/packager"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Event is one build-system callback.
type Event struct {
	Phase    core.Phase
	Target   *core.Target
	BuildDir string
	RunID    string // ledger run the event belongs to

	// Out collects handler results. May be nil.
	Out *Outcome

	// Built is the link output that just finished. Post-link only.
	Built string

	// Node and Flags describe the candidate source. Compile only.
	Node  core.CandidateNode
	Flags []string
}

// BuiltName returns the base name of Built, or "" if none.
func (e Event) BuiltName() string {
	if e.Built == "" {
		return ""
	}
	return filepath.Base(e.Built)
}

// Env returns the active target's name.
func (e Event) Env() string {
	if e.Target == nil {
		return ""
	}
	return e.Target.Name
}

// Outcome is where handlers leave their results for the caller that raised
// the event. Each event gets its own Outcome.
type Outcome struct {
	Decision *filter.Decision
	Package  *packager.Result
	Identity *device.Identity
}
