package hooks

import (
	"github.com/leapstack-labs/adpbuild/internal/starlark"
)

// Predicate decides whether a registration applies to an event.
type Predicate func(Event) (bool, error)

// Always accepts every event.
func Always() Predicate {
	return func(Event) (bool, error) { return true, nil }
}

// MatchTarget accepts events for the named target.
func MatchTarget(name string) Predicate {
	return func(e Event) (bool, error) {
		return e.Env() == name, nil
	}
}

// MatchBuilt accepts events whose link output has the given base name.
func MatchBuilt(file string) Predicate {
	return func(e Event) (bool, error) {
		return e.BuiltName() == file, nil
	}
}

// All accepts only if every predicate accepts. Evaluation stops at the
// first rejection or error. All() with no predicates accepts.
func All(preds ...Predicate) Predicate {
	return func(e Event) (bool, error) {
		for _, p := range preds {
			if p == nil {
				continue
			}
			ok, err := p(e)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Expr evaluates a compiled Starlark predicate against the event.
func Expr(p *starlark.Predicate) Predicate {
	return func(e Event) (bool, error) {
		return p.Eval(Facts(e))
	}
}

// Facts converts an event into the values predicates see.
func Facts(e Event) starlark.Facts {
	return starlark.Facts{
		Env:    e.Env(),
		Phase:  string(e.Phase),
		Built:  e.BuiltName(),
		Node:   e.Node.Path,
		Flags:  e.Flags,
		Target: starlark.TargetInfoFromTarget(e.Target),
	}
}
