// Package hidraw implements device.Opener on top of the Linux hidraw interface.
//
// Devices are discovered through sysfs: each /sys/class/hidraw/hidrawN/device/uevent
// carries HID_ID=<bus>:<vendor>:<product>. Identity strings come from the parent USB
// device attributes (manufacturer, product, serial), falling back to HID_NAME and
// HID_UNIQ for devices that do not expose them. Reports are written to /dev/hidrawN,
// where the first byte is the report ID.
//
// On other platforms Open and the capability probe return core.ErrUnsupported.
package hidraw
