// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/adpbuild/internal/cli/output"
)

// ProjectConfig is the adpbuild.yaml written by SetupTestProject.
const ProjectConfig = `targets:
  fsrio_v2:
    arch: avr8
    board: avr_fsriov2
  fsrio_v3:
    arch: esp32s3
    board: esp32s3_fsriov3
build_dir: build
state_path: state/ledger.db
`

// SetupTestProject creates a temporary project with an adpbuild.yaml and a
// build directory holding the link outputs of both architectures.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	buildDir := filepath.Join(tmpDir, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatalf("failed to create build directory: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "adpbuild.yaml"), []byte(ProjectConfig), 0o644); err != nil {
		t.Fatalf("failed to create adpbuild.yaml: %v", err)
	}

	artifacts := map[string]string{
		"firmware.hex":   ":100000000C945C000C946E000C946E000C946E00CA\n:00000001FF\n",
		"firmware.bin":   "\xe9\x03\x02\x20esp32s3 app image",
		"bootloader.bin": "\xe9\x03\x02\x20esp32s3 bootloader",
		"partitions.bin": "\xaa\x50\x01\x02nvs,otadata,app0",
	}
	for name, content := range artifacts {
		if err := os.WriteFile(filepath.Join(buildDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}
