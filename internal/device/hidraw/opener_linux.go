//go:build linux

package hidraw

import (
	"context"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/leapstack-labs/adpbuild/internal/device"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// hidiocgrawinfo is _IOR('H', 0x03, struct hidraw_devinfo).
const hidiocgrawinfo = 0x80084803

// rawDevInfo mirrors struct hidraw_devinfo.
type rawDevInfo struct {
	Bustype uint32
	Vendor  int16
	Product int16
}

// Opener opens hidraw devices found under Root.
type Opener struct {
	// Root is the filesystem root holding sys/ and dev/. Empty means "/".
	Root string

	// skipRawInfo bypasses the HIDIOCGRAWINFO check for plain-file trees in tests.
	skipRawInfo bool
}

// NewOpener returns an Opener for the live system.
func NewOpener() *Opener {
	return &Opener{Root: "/"}
}

// Open implements device.Opener.
func (o *Opener) Open(ctx context.Context, vid, pid core.USBID) (device.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := o.Root
	if root == "" {
		root = "/"
	}
	info, err := findDevice(root, vid, pid)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(info.devNode, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.devNode, err)
	}
	f := os.NewFile(uintptr(fd), info.devNode)

	if !o.skipRawInfo {
		if err := checkRawInfo(f, vid, pid); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	m, p, s := info.identityStrings()
	return &session{f: f, manufacturer: m, product: p, serial: s}, nil
}

// checkRawInfo confirms the opened node is the expected device.
func checkRawInfo(f *os.File, vid, pid core.USBID) error {
	var raw rawDevInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), hidiocgrawinfo, uintptr(unsafe.Pointer(&raw)))
	if errno != 0 {
		return fmt.Errorf("HIDIOCGRAWINFO %s: %w", f.Name(), errno)
	}
	if core.USBID(uint16(raw.Vendor)) != vid || core.USBID(uint16(raw.Product)) != pid {
		return fmt.Errorf("%s reports %04X:%04X, expected %s:%s: %w",
			f.Name(), uint16(raw.Vendor), uint16(raw.Product), vid, pid, core.ErrNoDevice)
	}
	return nil
}
