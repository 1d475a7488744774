package config

import (
	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/internal/device/hidraw"
	"github.com/leapstack-labs/adpbuild/internal/filter"
	"github.com/leapstack-labs/adpbuild/internal/packager"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Default configuration values.
const (
	DefaultBuildDir  = ".pio/build"
	DefaultStateFile = ".adpbuild/ledger.db"
	DefaultEnv       = "fsrio_v2"
)

// DefaultFilterFor returns the filter policy used when a target names none.
// AVR builds compile part of LUFA; other architectures need none of it.
func DefaultFilterFor(arch core.Architecture) string {
	if arch == core.ArchAVR8 {
		return string(core.FilterSelective)
	}
	return string(core.FilterExclude)
}

// DefaultTargets returns the two released pad boards.
func DefaultTargets() map[string]core.TargetConfig {
	return map[string]core.TargetConfig{
		"fsrio_v2": {
			Arch:   string(core.ArchAVR8),
			Board:  string(core.BoardAVRFSRIOv2),
			Filter: string(core.FilterSelective),
		},
		"fsrio_v3": {
			Arch:   string(core.ArchESP32S3),
			Board:  string(core.BoardESP32S3FSRIOv3),
			Filter: string(core.FilterExclude),
		},
	}
}

// DefaultDevice returns the pad's USB identity and reset report.
func DefaultDevice() core.DeviceConfig {
	return core.DeviceConfig{
		VendorID:       device.DefaultVendorID,
		ProductID:      device.DefaultProductID,
		ResetReportID:  device.DefaultResetReportID,
		InstallCommand: append([]string(nil), hidraw.DefaultInstallCommand...),
	}
}

// ApplyDefaults fills unset fields of c.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.VendorMarker == "" {
		c.VendorMarker = filter.DefaultVendorMarker
	}
	if len(c.Targets) == 0 {
		c.Targets = DefaultTargets()
	}

	def := DefaultDevice()
	if c.Device.VendorID == 0 {
		c.Device.VendorID = def.VendorID
	}
	if c.Device.ProductID == 0 {
		c.Device.ProductID = def.ProductID
	}
	if c.Device.ResetReportID == 0 {
		c.Device.ResetReportID = def.ResetReportID
	}
	if len(c.Device.InstallCommand) == 0 {
		c.Device.InstallCommand = def.InstallCommand
	}

	if c.Package.Naming == "" {
		c.Package.Naming = "environment"
	}
	if c.Package.Extension == "" {
		c.Package.Extension = packager.DefaultExtension
	}
}
