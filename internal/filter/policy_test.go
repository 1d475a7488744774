package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

func avrSelective(t *testing.T) *Selective {
	t.Helper()
	p, err := core.BuiltinProfile(core.ArchAVR8)
	require.NoError(t, err)
	return &Selective{Marker: DefaultVendorMarker, Allow: p.AllowList, Defines: p.Defines}
}

func TestSelective_Decide(t *testing.T) {
	policy := avrSelective(t)
	ambient := []string{"-Os", "-Wall", "-DF_CPU=16000000UL"}

	tests := []struct {
		name      string
		path      string
		want      Action
		wantFlags []string
	}{
		{
			name: "outside vendored subtree is kept",
			path: "src/Modules/ModulePad.cpp",
			want: ActionKeep,
		},
		{
			name: "vendored file not in allow list is excluded",
			path: "lib/lufa/LUFA/Drivers/USB/Core/UC3/Device_UC3.c",
			want: ActionExclude,
		},
		{
			name: "allow-listed vendored file compiles with defines",
			path: "lib/lufa/LUFA/Drivers/USB/Core/AVR8/Device_AVR8.c",
			want: ActionCompile,
			wantFlags: []string{
				"-Os", "-Wall", "-DF_CPU=16000000UL",
				"-D __AVR_ATmega32U4__", "-D ARCH=ARCH_AVR8", "-D USE_LUFA_CONFIG_HEADER",
			},
		},
		{
			name: "allow-listed name outside subtree is kept untouched",
			path: "src/Events.c",
			want: ActionKeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.Decide(core.NewCandidateNode(tt.path), ambient)
			assert.Equal(t, tt.want, d.Action)
			assert.Equal(t, tt.path, d.Path)
			assert.Equal(t, tt.wantFlags, d.Flags)
		})
	}
}

func TestSelective_DoesNotMutateAmbient(t *testing.T) {
	policy := avrSelective(t)

	// Spare capacity would let a careless append write into the caller's backing array.
	ambient := make([]string, 2, 16)
	ambient[0], ambient[1] = "-Os", "-Wall"
	before := append([]string(nil), ambient...)

	d := policy.Decide(core.NewCandidateNode("lib/lufa/LUFA/Drivers/USB/Core/Events.c"), ambient)
	require.Equal(t, ActionCompile, d.Action)

	assert.Equal(t, before, ambient)
	extended := ambient[:3]
	assert.Empty(t, extended[2], "spare capacity of ambient must stay untouched")

	d.Flags[0] = "-O0"
	assert.Equal(t, "-Os", ambient[0], "decision flags must not alias ambient")
}

func TestSelective_Idempotent(t *testing.T) {
	policy := avrSelective(t)
	ambient := []string{"-Os"}
	node := core.NewCandidateNode("lib/lufa/LUFA/Drivers/USB/Class/Device/HIDClassDevice.c")

	first := policy.Decide(node, ambient)
	second := policy.Decide(node, ambient)
	assert.Equal(t, first, second)
}

func TestSelective_EmptyAllowListExcludesSubtree(t *testing.T) {
	policy := &Selective{Marker: DefaultVendorMarker, Allow: core.NewAllowList()}
	d := policy.Decide(core.NewCandidateNode("lib/lufa/LUFA/Drivers/USB/Core/Events.c"), nil)
	assert.Equal(t, ActionExclude, d.Action)
}

func TestExcludeAll_Decide(t *testing.T) {
	policy := &ExcludeAll{Marker: DefaultVendorMarker}

	d := policy.Decide(core.NewCandidateNode("lib/lufa/LUFA/Drivers/USB/Core/Events.c"), []string{"-Os"})
	assert.Equal(t, ActionExclude, d.Action)
	assert.True(t, d.Vendored)
	assert.Nil(t, d.Flags)

	d = policy.Decide(core.NewCandidateNode("src/hal/esp32s3/USB.cpp"), []string{"-Os"})
	assert.Equal(t, ActionKeep, d.Action)
	assert.False(t, d.Vendored)
}

func TestForTarget(t *testing.T) {
	profile, err := core.BuiltinProfile(core.ArchAVR8)
	require.NoError(t, err)

	p, err := ForTarget(core.Target{Name: "fsriov2", Policy: core.FilterSelective, Profile: profile}, "")
	require.NoError(t, err)
	sel, ok := p.(*Selective)
	require.True(t, ok)
	assert.Equal(t, DefaultVendorMarker, sel.Marker)
	assert.Equal(t, core.FilterSelective, p.Kind())

	p, err = ForTarget(core.Target{Name: "esp32s3", Policy: core.FilterExclude}, "third_party/lufa")
	require.NoError(t, err)
	assert.Equal(t, core.FilterExclude, p.Kind())
	assert.Equal(t, "third_party/lufa", p.(*ExcludeAll).Marker)

	_, err = ForTarget(core.Target{Name: "bad", Policy: "sometimes"}, "")
	assert.Error(t, err)
}
