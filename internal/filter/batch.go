package filter

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Summary counts what a batch did with the nodes it was given.
type Summary struct {
	Total    int `json:"total"`
	Vendored int `json:"vendored"`
	Compiled int `json:"compiled"`
	Excluded int `json:"excluded"`
	Kept     int `json:"kept"`
}

// Check reports a configuration error when a selective build saw the vendored subtree
// but compiled none of it. That happens with an empty or wrong allow list.
func (s Summary) Check(kind core.FilterPolicyKind) error {
	if kind == core.FilterSelective && s.Vendored > 0 && s.Compiled == 0 {
		return fmt.Errorf("%w: %d vendored files seen, all excluded", core.ErrEmptyVendorBuild, s.Vendored)
	}
	return nil
}

func (s *Summary) add(d Decision) {
	s.Total++
	if d.Vendored {
		s.Vendored++
	}
	switch d.Action {
	case ActionCompile:
		s.Compiled++
	case ActionExclude:
		s.Excluded++
	case ActionKeep:
		s.Kept++
	}
}

// Filter evaluates a Policy over batches of nodes using a bounded worker pool.
type Filter struct {
	policy  Policy
	workers int
}

// New creates a Filter. Workers <= 0 uses GOMAXPROCS.
func New(policy Policy, workers int) *Filter {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Filter{policy: policy, workers: workers}
}

// Policy returns the policy the filter applies.
func (f *Filter) Policy() Policy { return f.policy }

// DecideFunc decides one node. It may block and may fail.
type DecideFunc func(ctx context.Context, node core.CandidateNode, ambient []string) (Decision, error)

// Run decides every node with the filter's policy, in parallel, and returns
// decisions in input order. Every worker reads the same ambient slice.
func (f *Filter) Run(ctx context.Context, nodes []core.CandidateNode, ambient []string) ([]Decision, Summary, error) {
	return f.RunFunc(ctx, nodes, ambient, func(_ context.Context, node core.CandidateNode, ambient []string) (Decision, error) {
		return f.policy.Decide(node, ambient), nil
	})
}

// RunFunc is Run with a caller-supplied decision function. The first error
// cancels the remaining work.
func (f *Filter) RunFunc(ctx context.Context, nodes []core.CandidateNode, ambient []string, decide DecideFunc) ([]Decision, Summary, error) {
	decisions := make([]Decision, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, node := range nodes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := decide(gctx, node, ambient)
			if err != nil {
				return fmt.Errorf("%s: %w", node.Path, err)
			}
			decisions[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	return decisions, Summarize(decisions), nil
}

// Summarize counts decisions.
func Summarize(decisions []Decision) Summary {
	var sum Summary
	for _, d := range decisions {
		sum.add(d)
	}
	return sum
}
