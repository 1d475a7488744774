package core

import "slices"

// AllowList is the ordered set of vendored base names that must compile for one architecture.
// Only membership is ever queried.
type AllowList struct {
	names []string
	index map[string]struct{}
}

// NewAllowList copies names into a new AllowList.
func NewAllowList(names ...string) AllowList {
	l := AllowList{
		names: make([]string, 0, len(names)),
		index: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		if _, dup := l.index[n]; dup {
			continue
		}
		l.index[n] = struct{}{}
		l.names = append(l.names, n)
	}
	return l
}

// Contains reports whether name is a member.
func (l AllowList) Contains(name string) bool {
	_, ok := l.index[name]
	return ok
}

// Len returns the number of distinct names.
func (l AllowList) Len() int { return len(l.names) }

// Names returns a copy of the names in declaration order.
func (l AllowList) Names() []string { return slices.Clone(l.names) }

// DefineSet is an ordered sequence of preprocessor definitions for one architecture.
type DefineSet struct {
	defines []string
}

// NewDefineSet copies defines into a new DefineSet.
func NewDefineSet(defines ...string) DefineSet {
	return DefineSet{defines: slices.Clone(defines)}
}

// Defines returns a copy of the raw define strings.
func (d DefineSet) Defines() []string { return slices.Clone(d.defines) }

// Len returns the number of defines.
func (d DefineSet) Len() int { return len(d.defines) }

// Flags renders the defines as compiler flags, one "-D <define>" token per define.
// A fresh slice is returned on every call.
func (d DefineSet) Flags() []string {
	flags := make([]string, len(d.defines))
	for i, def := range d.defines {
		flags[i] = "-D " + def
	}
	return flags
}

// ArtifactSet is the ordered list of built files that make up one release package.
type ArtifactSet struct {
	files []string
}

// NewArtifactSet copies files into a new ArtifactSet.
func NewArtifactSet(files ...string) ArtifactSet {
	return ArtifactSet{files: slices.Clone(files)}
}

// Files returns a copy of the artifact names in package order.
func (a ArtifactSet) Files() []string { return slices.Clone(a.files) }

// Len returns the number of artifacts.
func (a ArtifactSet) Len() int { return len(a.files) }

// BoardIdentity tags a package with its board and architecture, e.g. "avr_fsriov2".
type BoardIdentity string

// Valid reports whether the identity is usable as package metadata.
func (b BoardIdentity) Valid() bool { return b != "" }

func (b BoardIdentity) String() string { return string(b) }
