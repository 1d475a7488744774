//go:build !linux

package hidraw

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Opener is unavailable outside Linux.
type Opener struct {
	Root string
}

// NewOpener returns an Opener whose Open always fails on this platform.
func NewOpener() *Opener {
	return &Opener{}
}

// Open implements device.Opener.
func (o *Opener) Open(_ context.Context, vid, pid core.USBID) (device.Session, error) {
	return nil, fmt.Errorf("hidraw %s:%s: %w", vid, pid, core.ErrUnsupported)
}
