package hidraw

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// Paths relative to the filesystem root.
const (
	classPath = "sys/class/hidraw"
	devPath   = "dev"
)

// deviceInfo is one hidraw node discovered through sysfs.
type deviceInfo struct {
	node      string // hidrawN
	devNode   string // path of the character device
	bus       uint16
	vendorID  core.USBID
	productID core.USBID
	hidName   string // HID_NAME
	hidUniq   string // HID_UNIQ
	usbDir    string // sysfs dir of the parent USB device, may not exist
}

// parseUevent parses KEY=VALUE lines.
func parseUevent(data []byte) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok || key == "" {
			continue
		}
		out[key] = val
	}
	return out
}

// parseHIDID parses a HID_ID value such as "0003:00001209:0000B196".
func parseHIDID(s string) (bus uint16, vid, pid core.USBID, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed HID_ID %q", s)
	}
	b, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("HID_ID bus: %w", err)
	}
	v, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("HID_ID vendor: %w", err)
	}
	p, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("HID_ID product: %w", err)
	}
	return uint16(b), core.USBID(v), core.USBID(p), nil
}

// scanDevices lists hidraw nodes under root, sorted by node name.
// Nodes whose uevent cannot be parsed are skipped.
func scanDevices(root string) ([]deviceInfo, error) {
	classDir := filepath.Join(root, classPath)
	entries, err := os.ReadDir(classDir)
	if err != nil {
		return nil, err
	}

	var devices []deviceInfo
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "hidraw") {
			continue
		}

		hidDir, err := filepath.EvalSymlinks(filepath.Join(classDir, name, "device"))
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(hidDir, "uevent"))
		if err != nil {
			continue
		}
		ev := parseUevent(data)
		bus, vid, pid, err := parseHIDID(ev["HID_ID"])
		if err != nil {
			continue
		}

		devices = append(devices, deviceInfo{
			node:      name,
			devNode:   filepath.Join(root, devPath, name),
			bus:       bus,
			vendorID:  vid,
			productID: pid,
			hidName:   ev["HID_NAME"],
			hidUniq:   ev["HID_UNIQ"],
			// hid device -> usb interface -> usb device
			usbDir: filepath.Dir(filepath.Dir(hidDir)),
		})
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].node < devices[j].node })
	return devices, nil
}

// findDevice returns the first hidraw node matching vid and pid.
func findDevice(root string, vid, pid core.USBID) (deviceInfo, error) {
	devices, err := scanDevices(root)
	if err != nil {
		return deviceInfo{}, fmt.Errorf("scan hidraw devices: %w", err)
	}
	for _, d := range devices {
		if d.vendorID == vid && d.productID == pid {
			return d, nil
		}
	}
	return deviceInfo{}, fmt.Errorf("no hidraw device %s:%s: %w", vid, pid, core.ErrNoDevice)
}

// readAttr reads a single-line sysfs attribute, returning "" when absent.
func readAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// identityStrings resolves manufacturer, product and serial for d.
func (d deviceInfo) identityStrings() (manufacturer, product, serial string) {
	manufacturer = readAttr(d.usbDir, "manufacturer")
	product = readAttr(d.usbDir, "product")
	serial = readAttr(d.usbDir, "serial")

	if product == "" {
		product = strings.TrimSpace(strings.TrimPrefix(d.hidName, manufacturer))
	}
	if serial == "" {
		serial = d.hidUniq
	}
	return manufacturer, product, serial
}
