package core

import (
	"path/filepath"
	"strings"
)

// CandidateNode is a single source file offered to the compile phase.
// It is produced by the host build tool's file discovery and never modified here.
type CandidateNode struct {
	Path    string // relative path as seen by the build tool
	AbsPath string // absolute path on disk
	Name    string // base name
}

// NewCandidateNode builds a node from a path, deriving the absolute path and base name.
// When the path cannot be made absolute the relative path is kept as-is.
func NewCandidateNode(path string) CandidateNode {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return CandidateNode{
		Path:    path,
		AbsPath: abs,
		Name:    filepath.Base(path),
	}
}

// InSubtree reports whether the node path references the given subtree marker.
// Matching is plain string containment on the relative path, like the host tool does.
func (n CandidateNode) InSubtree(marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(n.Path, marker)
}
