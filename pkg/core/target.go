package core

import "fmt"

// FilterPolicyKind selects how the compile phase treats the vendored subtree.
type FilterPolicyKind string

// Filter policies.
const (
	// FilterSelective compiles only allow-listed vendored files, with architecture defines.
	FilterSelective FilterPolicyKind = "selective"
	// FilterExclude skips the whole vendored subtree.
	FilterExclude FilterPolicyKind = "exclude"
)

// ParseFilterPolicy validates a policy name.
func ParseFilterPolicy(s string) (FilterPolicyKind, error) {
	switch FilterPolicyKind(s) {
	case FilterSelective, FilterExclude:
		return FilterPolicyKind(s), nil
	default:
		return "", fmt.Errorf("unknown filter policy %q (expected %s or %s)", s, FilterSelective, FilterExclude)
	}
}

// Target is a fully resolved build environment.
type Target struct {
	Name    string // environment name, also the default package base name
	Arch    Architecture
	Board   BoardIdentity
	Policy  FilterPolicyKind
	Profile ArchProfile
	When    string // optional Starlark predicate
}

// TargetConfig is the on-disk description of a build environment.
type TargetConfig struct {
	Arch      string   `koanf:"arch"`
	Board     string   `koanf:"board"`
	Filter    string   `koanf:"filter"`
	When      string   `koanf:"when"`
	AllowList []string `koanf:"allow_list"` // overrides the architecture allow list
	Defines   []string `koanf:"defines"`    // overrides the architecture defines
	Artifacts []string `koanf:"artifacts"`  // overrides the architecture artifact set

	LinkOutput string `koanf:"link_output"` // overrides the architecture link output
}

// USBID is a 16-bit USB vendor or product identifier.
type USBID uint16

func (id USBID) String() string { return fmt.Sprintf("0x%04X", uint16(id)) }

// DeviceConfig identifies the pad on the bus and how to reset it.
type DeviceConfig struct {
	VendorID       USBID    `koanf:"vendor_id"`
	ProductID      USBID    `koanf:"product_id"`
	ResetReportID  byte     `koanf:"reset_report_id"`
	InstallCommand []string `koanf:"install_command"`
}

// PackageConfig controls how release packages are named.
type PackageConfig struct {
	Naming    string `koanf:"naming"` // environment | fixed
	Extension string `koanf:"extension"`
	FixedName string `koanf:"fixed_name"`
}
