// Package device performs the pre-upload handshake with an attached pad.
//
// The pad is found by USB vendor and product ID. The handshake reads its manufacturer,
// product and serial strings for the operator, then writes a single reset report that
// drops the firmware into its bootloader so the flashing tool can take the port.
//
// # Hardware Independence
//
// This package does NOT talk to hardware directly. Callers provide an Opener:
//
//	opener := hidraw.NewOpener()
//	r := device.NewResetter(opener,
//	    device.WithIdentity(0x1209, 0xB196),
//	    device.WithLogger(logger),
//	)
//	id, err := r.Reset(ctx)
//
// Tests and other platforms substitute their own Opener and Session.
//
// # Capabilities
//
// The platform backend may need to be made available first (for example, a kernel
// module). EnsureCapability probes it, runs an Installer once when the probe fails,
// and probes again. It is called once at process start, separate from the handshake.
package device
