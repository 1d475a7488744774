package config

import (
	"fmt"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// OutputModes lists the accepted --output values.
var OutputModes = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.ProjectConfig.Validate(); err != nil {
		return err
	}
	if _, ok := c.Targets[c.Environment]; !ok {
		return fmt.Errorf("env %q (configured: %v): %w", c.Environment, c.TargetNames(), core.ErrUnknownTarget)
	}
	if c.BuildDir == "" {
		return fmt.Errorf("build_dir is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	for _, m := range OutputModes {
		if c.OutputFormat == m {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (expected one of %v)", c.OutputFormat, OutputModes)
}
