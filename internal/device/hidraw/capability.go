package hidraw

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// CapabilityName identifies the hidraw backend to installers.
const CapabilityName = "hidraw"

// DefaultInstallCommand loads the hidraw driver.
var DefaultInstallCommand = []string{"modprobe", "hidraw"}

// Capability probes whether the hidraw class is present under Root.
type Capability struct {
	Root string
}

// Name implements device.Capability.
func (c *Capability) Name() string { return CapabilityName }

// Probe implements device.Capability.
func (c *Capability) Probe() error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("hidraw on %s: %w", runtime.GOOS, core.ErrUnsupported)
	}
	root := c.Root
	if root == "" {
		root = "/"
	}
	dir := filepath.Join(root, classPath)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("hidraw class not present: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
