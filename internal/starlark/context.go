package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predicate is a compiled `when` expression bound to one target.
type Predicate struct {
	// Name identifies the predicate in errors, usually "<target>.when".
	Name string
	Expr string

	vars starlark.Value
	pool *ThreadPool
	err  error
}

// PredicateOption is a functional option for configuring a Predicate.
type PredicateOption func(*Predicate)

// WithVars exposes user-defined variables as the "vars" global.
func WithVars(vars map[string]any) PredicateOption {
	return func(p *Predicate) {
		if len(vars) == 0 {
			return
		}
		v, err := GoToStarlark(vars)
		if err != nil {
			p.err = fmt.Errorf("%s: vars: %w", p.Name, err)
			return
		}
		v.Freeze()
		p.vars = v
	}
}

// WithPool shares a thread pool between predicates.
func WithPool(pool *ThreadPool) PredicateOption {
	return func(p *Predicate) {
		if pool != nil {
			p.pool = pool
		}
	}
}

// Compile parses expr and returns a Predicate. Syntax errors are reported
// here so a bad expression fails at configuration time.
func Compile(name, expr string, opts ...PredicateOption) (*Predicate, error) {
	if _, err := syntax.ParseExpr(name, expr, 0); err != nil { //nolint:staticcheck // SA1019: FileOptions migration pending
		return nil, &EvalError{Name: name, Expr: expr, Message: err.Error()}
	}

	p := &Predicate{Name: name, Expr: expr}
	for _, opt := range opts {
		opt(p)
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.pool == nil {
		p.pool = NewThreadPool(0)
	}
	return p, nil
}

// Eval evaluates the predicate and reports its truth value.
func (p *Predicate) Eval(f Facts) (bool, error) {
	thread := p.pool.Get(p.Name)
	defer p.pool.Put(thread)

	result, err := starlark.Eval(thread, p.Name, p.Expr, Predeclared(f, p.vars)) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return false, &EvalError{Name: p.Name, Expr: p.Expr, Message: err.Error()}
	}
	return bool(result.Truth()), nil
}

// Validate checks a user-supplied variable map can be exposed to predicates.
func Validate(vars map[string]any) error {
	if _, err := GoToStarlark(vars); err != nil {
		return fmt.Errorf("vars: %w", err)
	}
	return nil
}

// EvalError represents an error while parsing or evaluating a predicate.
type EvalError struct {
	Name    string
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: error evaluating %q: %s", e.Name, e.Expr, e.Message)
}
