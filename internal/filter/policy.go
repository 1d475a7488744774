package filter

import (
	"fmt"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// DefaultVendorMarker is the path fragment identifying the vendored USB stack.
const DefaultVendorMarker = "lufa"

// Action is the outcome of a filter decision.
type Action string

// Filter actions.
const (
	ActionKeep    Action = "keep"    // build the node as discovered
	ActionExclude Action = "exclude" // do not build the node
	ActionCompile Action = "compile" // build the node with Flags
)

// Decision is the result of presenting one node to a Policy.
type Decision struct {
	Node     core.CandidateNode `json:"-"`
	Path     string             `json:"path"`
	Action   Action             `json:"action"`
	Flags    []string           `json:"flags,omitempty"`
	Vendored bool               `json:"vendored"`
}

// Policy decides how one node participates in the build.
// Implementations must not retain or modify ambient.
type Policy interface {
	Kind() core.FilterPolicyKind
	Decide(node core.CandidateNode, ambient []string) Decision
}

// Selective compiles only allow-listed files of the vendored subtree.
type Selective struct {
	Marker  string
	Allow   core.AllowList
	Defines core.DefineSet
}

// Kind implements Policy.
func (s *Selective) Kind() core.FilterPolicyKind { return core.FilterSelective }

// Decide implements Policy.
func (s *Selective) Decide(node core.CandidateNode, ambient []string) Decision {
	if !node.InSubtree(s.Marker) {
		return Keep(node)
	}
	if !s.Allow.Contains(node.Name) {
		return Decision{Node: node, Path: node.Path, Action: ActionExclude, Vendored: true}
	}

	defines := s.Defines.Flags()
	flags := make([]string, 0, len(ambient)+len(defines))
	flags = append(flags, ambient...)
	flags = append(flags, defines...)

	return Decision{Node: node, Path: node.Path, Action: ActionCompile, Flags: flags, Vendored: true}
}

// ExcludeAll drops every file of the vendored subtree.
type ExcludeAll struct {
	Marker string
}

// Kind implements Policy.
func (e *ExcludeAll) Kind() core.FilterPolicyKind { return core.FilterExclude }

// Decide implements Policy.
func (e *ExcludeAll) Decide(node core.CandidateNode, _ []string) Decision {
	if !node.InSubtree(e.Marker) {
		return Keep(node)
	}
	return Decision{Node: node, Path: node.Path, Action: ActionExclude, Vendored: true}
}

// Keep is the decision for a node no policy claimed.
func Keep(node core.CandidateNode) Decision {
	return Decision{Node: node, Path: node.Path, Action: ActionKeep}
}

// ForTarget builds the policy configured for a target.
// An empty marker falls back to DefaultVendorMarker.
func ForTarget(t core.Target, marker string) (Policy, error) {
	if marker == "" {
		marker = DefaultVendorMarker
	}
	switch t.Policy {
	case core.FilterSelective:
		return &Selective{Marker: marker, Allow: t.Profile.AllowList, Defines: t.Profile.Defines}, nil
	case core.FilterExclude:
		return &ExcludeAll{Marker: marker}, nil
	default:
		return nil, fmt.Errorf("target %s: unknown filter policy %q", t.Name, t.Policy)
	}
}
