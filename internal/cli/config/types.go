// Package config provides configuration management for the adpbuild CLI.
//
// It layers CLI-only settings (active environment, build directory, ledger
// path, output mode) over the shared project configuration from
// internal/config.
package config

import (
	shared "github.com/leapstack-labs/adpbuild/internal/config"
)

// ProjectConfig is an alias for the shared project configuration.
type ProjectConfig = shared.ProjectConfig

// Config holds all CLI configuration options.
type Config struct {
	ProjectConfig `koanf:",squash"`

	Environment  string `koanf:"env"`
	BuildDir     string `koanf:"build_dir"`
	StatePath    string `koanf:"state_path"`
	Workers      int    `koanf:"workers"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultBuildDir  = shared.DefaultBuildDir
	DefaultStateFile = shared.DefaultStateFile
	DefaultEnv       = shared.DefaultEnv
	DefaultOutput    = "auto" // TTY=text, non-TTY=markdown
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "ADPBUILD_"

// InMemoryState keeps the ledger in memory.
const InMemoryState = ":memory:"
