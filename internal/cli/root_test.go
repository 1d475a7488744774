package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/adpbuild/internal/cli/config"
	"github.com/leapstack-labs/adpbuild/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{"version", "filter", "package", "reset", "inspect", "targets", "history", "completion"}
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "env", "build-dir", "state", "workers", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "e", cmd.PersistentFlags().Lookup("env").Shorthand)
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
}

func TestRootCmd_TargetsWithGlobalFlags(t *testing.T) {
	root := testutil.SetupTestProject(t)

	out, _, err := run(t, "--config", filepath.Join(root, "adpbuild.yaml"), "-e", "fsrio_v3", "-o", "json", "targets")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, true, got[1]["active"])
	assert.Equal(t, "fsrio_v3", got[1]["name"])
}

func TestRootCmd_PackageEndToEnd(t *testing.T) {
	root := testutil.SetupTestProject(t)
	cfgPath := filepath.Join(root, "adpbuild.yaml")

	_, _, err := run(t, "--config", cfgPath, "-e", "fsrio_v2", "-o", "json", "package", "--built", "firmware.hex")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "build", "fsrio_v2.adpf"))
	assert.FileExists(t, filepath.Join(root, "state", "ledger.db"))

	out, _, err := run(t, "--config", cfgPath, "-o", "json", "history")
	require.NoError(t, err)

	var hist struct {
		Runs     []map[string]any `json:"runs"`
		Packages []map[string]any `json:"packages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	require.Len(t, hist.Runs, 1)
	assert.Equal(t, "post-link", hist.Runs[0]["phase"])
	require.Len(t, hist.Packages, 1)
}

func TestRootCmd_ConfigErrors(t *testing.T) {
	root := testutil.SetupTestProject(t)

	_, _, err := run(t, "--config", filepath.Join(root, "adpbuild.yaml"), "-e", "fsrio_v9", "targets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fsrio_v9")
}

func TestRootCmd_VerboseLogsToStderr(t *testing.T) {
	root := testutil.SetupTestProject(t)

	out, errOut, err := run(t, "--config", filepath.Join(root, "adpbuild.yaml"), "-v", "-o", "markdown", "targets")
	require.NoError(t, err)
	assert.Contains(t, out, "fsrio_v2 *")
	assert.Contains(t, errOut, "using config file")
	assert.Contains(t, errOut, "level=DEBUG")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "adpbuild")

	_, _, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestVersionCommand_SkipsConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "adpbuild v"+Version)
}
