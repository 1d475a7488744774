package packager

import (
	"fmt"
	"strings"
)

// MissingArtifactsError indicates that expected build outputs are not on disk.
// No package is written when this is returned.
type MissingArtifactsError struct {
	BuildDir string
	Missing  []string
}

func (e *MissingArtifactsError) Error() string {
	return fmt.Sprintf("missing artifacts in %s: %s", e.BuildDir, strings.Join(e.Missing, ", "))
}

// MembershipError indicates a package whose members differ from its artifact set.
type MembershipError struct {
	Path       string
	Missing    []string
	Unexpected []string
}

func (e *MembershipError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("package %s: %s", e.Path, strings.Join(parts, "; "))
}

// BoardMismatchError indicates a package built for another board.
type BoardMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *BoardMismatchError) Error() string {
	return fmt.Sprintf("package %s: board mismatch: expected %q, package has %q", e.Path, e.Expected, e.Actual)
}

// MemberNameError indicates an artifact set that cannot be stored under bare
// filenames: two entries share a base name, or one collides with boardtype.txt.
type MemberNameError struct {
	Name    string
	Entries []string
}

func (e *MemberNameError) Error() string {
	if len(e.Entries) == 1 {
		return fmt.Sprintf("artifact %s: member name %q is reserved", e.Entries[0], e.Name)
	}
	return fmt.Sprintf("artifacts %s: duplicate member name %q", strings.Join(e.Entries, ", "), e.Name)
}
