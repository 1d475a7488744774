package core

import "fmt"

// Architecture identifies a microcontroller family the firmware is built for.
type Architecture string

// Supported architectures.
const (
	ArchAVR8    Architecture = "avr8"
	ArchESP32S3 Architecture = "esp32s3"
)

// ParseArchitecture validates an architecture name.
func ParseArchitecture(s string) (Architecture, error) {
	switch Architecture(s) {
	case ArchAVR8, ArchESP32S3:
		return Architecture(s), nil
	default:
		return "", fmt.Errorf("unknown architecture %q (expected %s or %s)", s, ArchAVR8, ArchESP32S3)
	}
}

// ArchProfile holds the build-time constants of one architecture.
type ArchProfile struct {
	Arch       Architecture
	AllowList  AllowList
	Defines    DefineSet
	Artifacts  ArtifactSet
	LinkOutput string // link target whose completion triggers packaging
}

// lufaAVR8Sources are the LUFA sources needed by the ATmega32U4 build.
var lufaAVR8Sources = []string{
	"HIDParser.c",
	"Device_AVR8.c",
	"EndpointStream_AVR8.c",
	"Endpoint_AVR8.c",
	"Host_AVR8.c",
	"PipeStream_AVR8.c",
	"Pipe_AVR8.c",
	"USBController_AVR8.c",
	"USBInterrupt_AVR8.c",
	"ConfigDescriptors.c",
	"DeviceStandardReq.c",
	"Events.c",
	"HostStandardReq.c",
	"USBTask.c",
	"AudioClassDevice.c",
	"CCIDClassDevice.c",
	"CDCClassDevice.c",
	"HIDClassDevice.c",
	"MassStorageClassDevice.c",
	"MIDIClassDevice.c",
	"PrinterClassDevice.c",
	"RNDISClassDevice.c",
	"AndroidAccessoryClassHost.c",
	"AudioClassHost.c",
	"CDCClassHost.c",
	"HIDClassHost.c",
	"MassStorageClassHost.c",
	"MIDIClassHost.c",
	"PrinterClassHost.c",
	"RNDISClassHost.c",
	"StillImageClassHost.c",
}

// Board identity tokens of released packages. They must match existing releases verbatim.
const (
	BoardAVRFSRIOv2     BoardIdentity = "avr_fsriov2"
	BoardESP32S3FSRIOv3 BoardIdentity = "esp32s3_fsriov3"
)

// BuiltinProfile returns a fresh copy of the built-in profile for arch.
func BuiltinProfile(arch Architecture) (ArchProfile, error) {
	switch arch {
	case ArchAVR8:
		return ArchProfile{
			Arch:       ArchAVR8,
			AllowList:  NewAllowList(lufaAVR8Sources...),
			Defines:    NewDefineSet("__AVR_ATmega32U4__", "ARCH=ARCH_AVR8", "USE_LUFA_CONFIG_HEADER"),
			Artifacts:  NewArtifactSet("firmware.hex"),
			LinkOutput: "firmware.hex",
		}, nil
	case ArchESP32S3:
		return ArchProfile{
			Arch:       ArchESP32S3,
			AllowList:  NewAllowList(),
			Defines:    NewDefineSet(),
			Artifacts:  NewArtifactSet("firmware.bin", "bootloader.bin", "partitions.bin"),
			LinkOutput: "firmware.bin",
		}, nil
	default:
		return ArchProfile{}, fmt.Errorf("no profile for architecture %q", arch)
	}
}
