package device

import (
	"context"
	"strings"
)

// Kind classifies a block device as reported by the enumeration tool.
type Kind string

const (
	KindDisk    Kind = "disk"
	KindUnknown Kind = "unknown"
)

// Device is one attached block device. Devices carry no mutable state and are
// re-derived on every enumeration call.
type Device struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// BlockDevice is the raw-read primitive used by the surface scan. It is a
// positioned reader over the device's full addressable range.
type BlockDevice interface {
	ReadAt(p []byte, off int64) (int, error)
	Size() (int64, error)
	Close() error
}

// Gateway runs the external storage tools and opens devices for raw reads.
// Each tool call spawns one short-lived process; the gateway itself holds no
// shared mutable state.
type Gateway interface {
	// ListDevices enumerates attached disk-type block devices. An empty
	// result is not an error.
	ListDevices(ctx context.Context) ([]Device, error)

	// FetchSmartText returns the raw SMART attribute text for a device.
	FetchSmartText(ctx context.Context, drive string) (string, error)

	// SecureErase issues an ATA security erase. Destructive and
	// non-retryable; must only ever be invoked on an explicit request.
	SecureErase(ctx context.Context, drive string) (string, error)

	// Open opens the device for positioned raw reads.
	Open(drive string) (BlockDevice, error)
}

// NewGateway creates a device gateway for the current platform.
func NewGateway() Gateway {
	return newPlatformGateway()
}

// parseDeviceList turns `lsblk -d -n -o NAME,TYPE` output into devices,
// keeping only disk-type rows. Lines that do not split into two fields are
// skipped.
func parseDeviceList(out string) []Device {
	devices := []Device{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		if fields[1] != string(KindDisk) {
			continue
		}
		devices = append(devices, Device{Name: fields[0], Kind: KindDisk})
	}
	return devices
}
