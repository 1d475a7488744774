package device

import "fmt"

// ShortWriteError indicates the device accepted fewer bytes than the frame length.
type ShortWriteError struct {
	Expected int
	Written  int
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("short write: expected %d bytes, wrote %d", e.Expected, e.Written)
}

// CapabilityError indicates a platform capability is unavailable even after installation.
type CapabilityError struct {
	Name string
	Err  error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %s unavailable: %v", e.Name, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }
