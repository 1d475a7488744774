package filter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

func nodes(paths ...string) []core.CandidateNode {
	out := make([]core.CandidateNode, len(paths))
	for i, p := range paths {
		out[i] = core.NewCandidateNode(p)
	}
	return out
}

func TestFilter_RunPreservesOrder(t *testing.T) {
	var paths []string
	for i := 0; i < 50; i++ {
		paths = append(paths, fmt.Sprintf("src/file%02d.c", i))
		paths = append(paths, "lib/lufa/LUFA/Drivers/USB/Core/USBTask.c")
		paths = append(paths, "lib/lufa/LUFA/Drivers/Board/LEDs.c")
	}

	ambient := []string{"-Os", "-Wall"}
	f := New(avrSelective(t), 4)

	decisions, sum, err := f.Run(context.Background(), nodes(paths...), ambient)
	require.NoError(t, err)
	require.Len(t, decisions, len(paths))

	for i, d := range decisions {
		assert.Equal(t, paths[i], d.Path)
	}
	assert.Equal(t, Summary{Total: 150, Vendored: 100, Compiled: 50, Excluded: 50, Kept: 50}, sum)
	assert.NoError(t, sum.Check(core.FilterSelective))
	assert.Equal(t, []string{"-Os", "-Wall"}, ambient)
}

func TestFilter_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(&ExcludeAll{Marker: DefaultVendorMarker}, 1)
	_, _, err := f.Run(ctx, nodes("src/a.c", "src/b.c"), nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSummary_Check(t *testing.T) {
	tests := []struct {
		name    string
		sum     Summary
		kind    core.FilterPolicyKind
		wantErr bool
	}{
		{
			name:    "selective with nothing compiled",
			sum:     Summary{Total: 10, Vendored: 4, Excluded: 4, Kept: 6},
			kind:    core.FilterSelective,
			wantErr: true,
		},
		{
			name: "selective with compiled objects",
			sum:  Summary{Total: 10, Vendored: 4, Compiled: 1, Excluded: 3, Kept: 6},
			kind: core.FilterSelective,
		},
		{
			name: "selective without vendored nodes",
			sum:  Summary{Total: 3, Kept: 3},
			kind: core.FilterSelective,
		},
		{
			name: "exclude policy never trips",
			sum:  Summary{Total: 10, Vendored: 4, Excluded: 4, Kept: 6},
			kind: core.FilterExclude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sum.Check(tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrEmptyVendorBuild)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew_DefaultWorkers(t *testing.T) {
	f := New(&ExcludeAll{}, 0)
	assert.Positive(t, f.workers)
	assert.Equal(t, core.FilterExclude, f.Policy().Kind())
}

func TestFilter_RunFuncStopsAtFirstError(t *testing.T) {
	boom := errors.New("predicate failed")
	f := New(&ExcludeAll{Marker: DefaultVendorMarker}, 2)

	_, _, err := f.RunFunc(context.Background(), nodes("src/a.c", "src/bad.c", "src/c.c"), nil,
		func(_ context.Context, node core.CandidateNode, _ []string) (Decision, error) {
			if node.Name == "bad.c" {
				return Decision{}, boom
			}
			return Keep(node), nil
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "src/bad.c")
}

func TestSummarize(t *testing.T) {
	pol := avrSelective(t)
	ds := []Decision{
		pol.Decide(core.NewCandidateNode("src/main.c"), nil),
		pol.Decide(core.NewCandidateNode("lib/lufa/LUFA/Drivers/USB/Core/Events.c"), nil),
		pol.Decide(core.NewCandidateNode("lib/lufa/LUFA/Drivers/Misc/RingBuffer.c"), nil),
	}
	assert.Equal(t, Summary{Total: 3, Vendored: 2, Compiled: 1, Excluded: 1, Kept: 1}, Summarize(ds))
	assert.Equal(t, Summary{}, Summarize(nil))
}
