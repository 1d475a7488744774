package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/adpbuild/internal/cli/config"
	"github.com/leapstack-labs/adpbuild/internal/cli/testutil"
	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/internal/device/devicetest"
	"github.com/leapstack-labs/adpbuild/internal/engine"
	"github.com/leapstack-labs/adpbuild/internal/filter"
	"github.com/leapstack-labs/adpbuild/internal/packager"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

type presentCapability struct{}

func (presentCapability) Name() string { return "hidraw" }
func (presentCapability) Probe() error { return nil }

// loadProject loads root/adpbuild.yaml as the current configuration, with
// global flags such as -e and -o applied.
func loadProject(t *testing.T, root string, globals ...string) *config.Config {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.StringP("env", "e", "", "")
	fs.StringP("output", "o", "", "")
	require.NoError(t, fs.Parse(globals))

	cfg, err := config.LoadConfig(filepath.Join(root, "adpbuild.yaml"), fs)
	require.NoError(t, err)
	return cfg
}

// withPads routes the engine's device access to in-memory pads.
func withPads(t *testing.T, pads ...*devicetest.Pad) *devicetest.Opener {
	t.Helper()
	opener := &devicetest.Opener{Pads: pads}
	configureEngine = func(c *engine.Config) {
		c.Opener = opener
		c.Capability = presentCapability{}
		c.Installer = device.InstallerFunc(func(context.Context, string) error { return nil })
	}
	t.Cleanup(func() { configureEngine = nil })
	return opener
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewFilterCommand(), "filter [paths...]", []string{"flags", "stdin"}},
		{NewPackageCommand(), "package", []string{"built"}},
		{NewResetCommand(), "reset", nil},
		{NewInspectCommand(), "inspect <file.adpf>", []string{"verify"}},
		{NewTargetsCommand(), "targets", nil},
		{NewHistoryCommand(), "history", []string{"limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, f := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(f), "flag %q should exist", f)
			}
		})
	}
}

func TestFilterCommand_JSONLines(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-e", "fsrio_v2", "-o", "json")

	out, _, err := execute(t, NewFilterCommand(),
		"--flags=-Os", "--flags=-DF_CPU=16000000UL",
		"src/main.cpp",
		"lib/lufa/LUFA/Drivers/USB/Core/Events.c",
		"lib/lufa/Bootloaders/DFU/BootloaderDFU.c",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	var decisions []filter.Decision
	for _, line := range lines {
		var d filter.Decision
		require.NoError(t, json.Unmarshal([]byte(line), &d))
		decisions = append(decisions, d)
	}

	assert.Equal(t, filter.ActionKeep, decisions[0].Action)
	assert.Equal(t, "src/main.cpp", decisions[0].Path)
	assert.Equal(t, filter.ActionCompile, decisions[1].Action)
	assert.Equal(t, []string{
		"-Os", "-DF_CPU=16000000UL",
		"-D __AVR_ATmega32U4__", "-D ARCH=ARCH_AVR8", "-D USE_LUFA_CONFIG_HEADER",
	}, decisions[1].Flags)
	assert.Equal(t, filter.ActionExclude, decisions[2].Action)
}

func TestFilterCommand_Stdin(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-e", "fsrio_v3", "-o", "text")

	cmd := NewFilterCommand()
	cmd.SetIn(strings.NewReader("src/main.cpp\n\n  lib/lufa/LUFA/Drivers/USB/Core/Events.c  \n"))
	out, _, err := execute(t, cmd, "--stdin")
	require.NoError(t, err)

	assert.Contains(t, out, "keep     src/main.cpp")
	assert.Contains(t, out, "exclude  lib/lufa/LUFA/Drivers/USB/Core/Events.c")
	assert.Contains(t, out, "2 sources: 0 compiled, 1 excluded, 1 kept (1 vendored)")
}

func TestFilterCommand_EmptyVendorBuildStillPrints(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-e", "fsrio_v2", "-o", "text")

	out, _, err := execute(t, NewFilterCommand(), "lib/lufa/Bootloaders/DFU/BootloaderDFU.c")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyVendorBuild)
	assert.Contains(t, out, "exclude  lib/lufa/Bootloaders/DFU/BootloaderDFU.c")
}

func TestFilterCommand_NoPaths(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root)

	_, _, err := execute(t, NewFilterCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source paths given")
}

func TestPackageCommand(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-e", "fsrio_v3", "-o", "json")

	out, _, err := execute(t, NewPackageCommand(), "--built", filepath.Join(root, "build", "firmware.bin"))
	require.NoError(t, err)

	var got PackageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "fsrio_v3", got.Env)
	assert.Equal(t, filepath.Join(root, "build", "fsrio_v3.adpf"), got.Path)
	assert.Len(t, got.SHA256, 64)
	assert.Equal(t, []string{"firmware.bin", "bootloader.bin", "partitions.bin", "boardtype.txt"}, got.Members)

	m, err := packager.Inspect(got.Path)
	require.NoError(t, err)
	assert.Equal(t, core.BoardESP32S3FSRIOv3, m.Board)
}

func TestPackageCommand_OtherLinkOutputIsIgnored(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-e", "fsrio_v2", "-o", "text")

	out, _, err := execute(t, NewPackageCommand(), "--built", filepath.Join(root, "build", "firmware.elf"))
	require.NoError(t, err)
	assert.Contains(t, out, "no package hook for")
	assert.NoFileExists(t, filepath.Join(root, "build", "fsrio_v2.adpf"))
}

func TestPackageCommand_RequiresBuilt(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root)

	_, _, err := execute(t, NewPackageCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"built" not set`)
}

func TestResetCommand(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-o", "text")
	pad := devicetest.NewFSRioPad()
	withPads(t, pad)

	out, _, err := execute(t, NewResetCommand())
	require.NoError(t, err)

	assert.Contains(t, out, "Manufacturer: DIY")
	assert.Contains(t, out, "Product: FSRio Dance Pad")
	assert.Contains(t, out, "Serial Number: ADP-000123")
	assert.Equal(t, [][]byte{{0x03}}, pad.Writes())
}

func TestResetCommand_NoDevice(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-o", "json")
	opener := withPads(t)

	_, _, err := execute(t, NewResetCommand())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoDevice))
	assert.Equal(t, 1, opener.Attempts, "no retry")
}

func TestInspectCommand(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-e", "fsrio_v2", "-o", "json")
	_, _, err := execute(t, NewPackageCommand(), "--built", "firmware.hex")
	require.NoError(t, err)
	pkg := filepath.Join(root, "build", "fsrio_v2.adpf")

	t.Run("verify against active target", func(t *testing.T) {
		out, _, err := execute(t, NewInspectCommand(), "--verify", pkg)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "avr_fsriov2", got["board"])
		assert.Equal(t, true, got["verified"])
	})

	t.Run("verify against other target fails", func(t *testing.T) {
		loadProject(t, root, "-e", "fsrio_v3", "-o", "json")
		_, _, err := execute(t, NewInspectCommand(), "--verify", pkg)
		require.Error(t, err)
	})

	t.Run("plain listing", func(t *testing.T) {
		loadProject(t, root, "-o", "markdown")
		out, _, err := execute(t, NewInspectCommand(), pkg)
		require.NoError(t, err)
		assert.Contains(t, out, "- **Board**: avr_fsriov2")
		assert.Contains(t, out, "- firmware.hex")
		assert.Contains(t, out, "- boardtype.txt")
	})
}

func TestTargetsCommand(t *testing.T) {
	root := testutil.SetupTestProject(t)

	t.Run("json", func(t *testing.T) {
		loadProject(t, root, "-e", "fsrio_v3", "-o", "json")
		out, _, err := execute(t, NewTargetsCommand())
		require.NoError(t, err)

		var got []TargetOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "fsrio_v2", got[0].Name)
		assert.Equal(t, "selective", got[0].Policy)
		assert.False(t, got[0].Active)
		assert.Equal(t, "esp32s3", got[1].Arch)
		assert.Equal(t, "firmware.bin", got[1].LinkOutput)
		assert.True(t, got[1].Active)
	})

	t.Run("markdown table", func(t *testing.T) {
		loadProject(t, root, "-o", "markdown")
		out, _, err := execute(t, NewTargetsCommand())
		require.NoError(t, err)
		assert.Contains(t, out, "| Env | Arch | Board | Policy | Link Output | Artifacts |")
		assert.Contains(t, out, "fsrio_v2 *")
		testutil.AssertNoANSI(t, out)
	})
}

func TestHistoryCommand(t *testing.T) {
	root := testutil.SetupTestProject(t)
	loadProject(t, root, "-e", "fsrio_v2", "-o", "json")
	withPads(t, devicetest.NewFSRioPad())

	_, _, err := execute(t, NewPackageCommand(), "--built", "firmware.hex")
	require.NoError(t, err)
	_, _, err = execute(t, NewResetCommand())
	require.NoError(t, err)
	_, _, err = execute(t, NewFilterCommand(), "lib/lufa/Bootloaders/DFU/BootloaderDFU.c")
	require.Error(t, err)

	out, _, err := execute(t, NewHistoryCommand(), "--limit", "0")
	require.NoError(t, err)

	var got HistoryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Runs, 3)
	assert.Equal(t, "compile", got.Runs[0].Phase)
	assert.Equal(t, "failed", got.Runs[0].Status)
	assert.NotEmpty(t, got.Runs[0].Error)
	assert.Equal(t, "completed", got.Runs[2].Status)

	require.Len(t, got.Packages, 1)
	assert.Equal(t, "avr_fsriov2", got.Packages[0].Board)
	require.Len(t, got.Resets, 1)
	assert.Equal(t, "ADP-000123", got.Resets[0].Serial)
}

func TestRenderFilter_Markdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	node := core.NewCandidateNode("lib/lufa/LUFA/Drivers/USB/Core/USBTask.c")
	res := &engine.FilterResult{
		Decisions: []filter.Decision{
			{Node: node, Path: node.Path, Action: filter.ActionCompile, Flags: []string{"-D ARCH=ARCH_AVR8"}, Vendored: true},
		},
		Summary: filter.Summary{Total: 1, Vendored: 1, Compiled: 1},
	}

	require.NoError(t, renderFilter(tr.Renderer, res))
	testutil.AssertContains(t, tr.Output(), "compile  lib/lufa/LUFA/Drivers/USB/Core/USBTask.c -D ARCH=ARCH_AVR8")
	testutil.AssertContains(t, tr.Output(), "1 sources: 1 compiled")
	testutil.AssertNoANSI(t, tr.Output())
}

func TestRenderPackage_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()
	res := &packager.Result{
		Path:    "/b/fsrio_v2.adpf",
		Members: []string{"firmware.hex", "boardtype.txt"},
		SHA256:  strings.Repeat("ab", 32),
		Size:    512,
	}

	require.NoError(t, renderPackage(tr.Renderer, "fsrio_v2", "firmware.hex", res))
	testutil.AssertContains(t, tr.Output(), "packaged /b/fsrio_v2.adpf")
	testutil.AssertContains(t, tr.Output(), "512 bytes")
	testutil.AssertContains(t, tr.Output(), "firmware.hex, boardtype.txt")
}
