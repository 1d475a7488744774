package starlark

import (
	"go.starlark.net/starlark"
)

// Facts are the event values a predicate is evaluated against.
type Facts struct {
	Env    string
	Phase  string
	Built  string   // base name of the finished link output, post-link only
	Node   string   // source path, compile only
	Flags  []string // ambient flags, compile only
	Target *TargetInfo
}

// Predeclared returns the globals for one evaluation:
// env, phase, built, node, flags, target and vars.
// vars is a frozen dict; a nil map yields an empty one.
func Predeclared(f Facts, vars starlark.Value) starlark.StringDict {
	flags := make([]starlark.Value, len(f.Flags))
	for i, fl := range f.Flags {
		flags[i] = starlark.String(fl)
	}

	if vars == nil {
		vars = starlark.NewDict(0)
	}

	globals := starlark.StringDict{
		"env":   starlark.String(f.Env),
		"phase": starlark.String(f.Phase),
		"built": starlark.String(f.Built),
		"node":  starlark.String(f.Node),
		"flags": starlark.Tuple(flags),
		"vars":  vars,
	}

	if f.Target != nil {
		globals["target"] = f.Target.ToStarlark()
	} else {
		globals["target"] = starlark.None
	}

	globals.Freeze()
	return globals
}
