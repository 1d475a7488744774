package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/adpbuild/internal/starlark"
	"github.com/leapstack-labs/adpbuild/internal/testutil"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

func v2Target() *core.Target {
	return &core.Target{Name: "fsrio_v2", Arch: core.ArchAVR8, Board: core.BoardAVRFSRIOv2}
}

func v3Target() *core.Target {
	return &core.Target{Name: "fsrio_v3", Arch: core.ArchESP32S3, Board: core.BoardESP32S3FSRIOv3}
}

// recorder registers handlers that append their name to calls.
type recorder struct {
	calls []string
}

func (r *recorder) handler(name string, err error) Handler {
	return func(context.Context, Event) error {
		r.calls = append(r.calls, name)
		return err
	}
}

func TestDispatch_OrderAndPredicates(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(testutil.NewTestLogger(t))

	require.NoError(t, reg.Register(Registration{Phase: core.PhasePostLink, Name: "v2-hex",
		Predicate: All(MatchTarget("fsrio_v2"), MatchBuilt("firmware.hex")), Handler: rec.handler("v2-hex", nil)}))
	require.NoError(t, reg.Register(Registration{Phase: core.PhasePostLink, Name: "v3-bin",
		Predicate: All(MatchTarget("fsrio_v3"), MatchBuilt("firmware.bin")), Handler: rec.handler("v3-bin", nil)}))
	require.NoError(t, reg.Register(Registration{Phase: core.PhasePostLink, Name: "audit",
		Handler: rec.handler("audit", nil)}))
	require.NoError(t, reg.Register(Registration{Phase: core.PhasePreUpload, Name: "reset",
		Handler: rec.handler("reset", nil)}))

	tests := []struct {
		name  string
		event Event
		want  []string
	}{
		{
			name:  "v2 hex",
			event: Event{Phase: core.PhasePostLink, Target: v2Target(), Built: ".pio/build/fsrio_v2/firmware.hex"},
			want:  []string{"v2-hex", "audit"},
		},
		{
			name:  "v3 bin",
			event: Event{Phase: core.PhasePostLink, Target: v3Target(), Built: "/abs/firmware.bin"},
			want:  []string{"v3-bin", "audit"},
		},
		{
			name:  "v3 elf matches only the catch-all",
			event: Event{Phase: core.PhasePostLink, Target: v3Target(), Built: "firmware.elf"},
			want:  []string{"audit"},
		},
		{
			name:  "pre-upload",
			event: Event{Phase: core.PhasePreUpload, Target: v2Target()},
			want:  []string{"reset"},
		},
		{
			name:  "compile has no registrations",
			event: Event{Phase: core.PhaseCompile, Target: v2Target()},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.calls = nil
			n, err := reg.Dispatch(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.calls)
			assert.Equal(t, len(tt.want), n)
		})
	}
}

func TestDispatch_StopsAtFirstError(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	reg := NewRegistry(nil)

	require.NoError(t, reg.Register(Registration{Phase: core.PhasePreUpload, Name: "first", Handler: rec.handler("first", nil)}))
	require.NoError(t, reg.Register(Registration{Phase: core.PhasePreUpload, Name: "fails", Handler: rec.handler("fails", boom)}))
	require.NoError(t, reg.Register(Registration{Phase: core.PhasePreUpload, Name: "never", Handler: rec.handler("never", nil)}))

	n, err := reg.Dispatch(context.Background(), Event{Phase: core.PhasePreUpload})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsDispatchError(err))
	assert.Contains(t, err.Error(), `pre-upload hook "fails"`)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"first", "fails"}, rec.calls)
}

func TestDispatch_PredicateError(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(nil)

	pred, err := starlark.Compile("fsrio_v2.when", `missing_name`)
	require.NoError(t, err)
	require.NoError(t, reg.Register(Registration{Phase: core.PhasePostLink, Name: "pkg",
		Predicate: Expr(pred), Handler: rec.handler("pkg", nil)}))

	_, err = reg.Dispatch(context.Background(), Event{Phase: core.PhasePostLink, Target: v2Target()})
	var evalErr *starlark.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Empty(t, rec.calls)
}

func TestDispatch_ExprPredicate(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(nil)

	pred, err := starlark.Compile("fsrio_v3.when", `target.arch == "esp32s3" and built == "firmware.bin"`)
	require.NoError(t, err)
	require.NoError(t, reg.Register(Registration{Phase: core.PhasePostLink, Name: "pkg",
		Predicate: Expr(pred), Handler: rec.handler("pkg", nil)}))

	_, err = reg.Dispatch(context.Background(), Event{Phase: core.PhasePostLink, Target: v3Target(), Built: "out/firmware.bin"})
	require.NoError(t, err)
	_, err = reg.Dispatch(context.Background(), Event{Phase: core.PhasePostLink, Target: v3Target(), Built: "out/firmware.elf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg"}, rec.calls)
}

func TestDispatch_CancelledContext(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(Registration{Phase: core.PhaseCompile, Name: "filter", Handler: rec.handler("filter", nil)}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.Dispatch(ctx, Event{Phase: core.PhaseCompile})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestRegister_Validation(t *testing.T) {
	reg := NewRegistry(nil)

	err := reg.Register(Registration{Phase: core.PhaseCompile, Name: "nil-handler"})
	assert.ErrorContains(t, err, "nil handler")

	err = reg.Register(Registration{Phase: "link", Name: "bad-phase", Handler: func(context.Context, Event) error { return nil }})
	assert.ErrorContains(t, err, "unknown phase")

	assert.Empty(t, reg.Registrations(core.PhaseCompile))
}

func TestAll(t *testing.T) {
	e := Event{Phase: core.PhasePostLink, Target: v2Target(), Built: "firmware.hex"}

	ok, err := All()(e)
	require.NoError(t, err)
	assert.True(t, ok, "empty All accepts")

	ok, err = All(MatchTarget("fsrio_v2"), MatchBuilt("firmware.bin"))(e)
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("boom")
	failing := func(Event) (bool, error) { return false, boom }
	_, err = All(MatchTarget("fsrio_v2"), failing)(e)
	assert.ErrorIs(t, err, boom)

	ok, err = All(MatchTarget("other"), failing)(e)
	require.NoError(t, err, "short-circuits before the failing predicate")
	assert.False(t, ok)
}

func TestEvent_Accessors(t *testing.T) {
	var e Event
	assert.Empty(t, e.Env())
	assert.Empty(t, e.BuiltName())

	e = Event{Target: v3Target(), Built: "/x/y/firmware.bin"}
	assert.Equal(t, "fsrio_v3", e.Env())
	assert.Equal(t, "firmware.bin", e.BuiltName())
}
