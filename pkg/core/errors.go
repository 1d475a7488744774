package core

import "errors"

// Configuration and environment errors shared across phases.
var (
	// ErrUnknownTarget indicates the requested environment is not configured.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrMissingBoardIdentity indicates a target has no board identity configured.
	ErrMissingBoardIdentity = errors.New("missing board identity")

	// ErrEmptyVendorBuild indicates the vendored subtree produced zero objects.
	ErrEmptyVendorBuild = errors.New("no objects produced from vendored subtree")

	// ErrNoDevice indicates no attached device matches the configured identity.
	ErrNoDevice = errors.New("device not present")

	// ErrUnsupported indicates the operation is unavailable on this platform.
	ErrUnsupported = errors.New("not supported")
)
