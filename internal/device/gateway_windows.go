//go:build windows

package device

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/StackExchange/wmi"
)

// WindowsGateway enumerates physical drives through WMI. SMART text
// acquisition, secure erase and raw surface reads rely on the Linux tool
// chain and are not available here.
type WindowsGateway struct{}

// newPlatformGateway creates a new Windows device gateway
func newPlatformGateway() Gateway {
	return &WindowsGateway{}
}

// Win32_DiskDrive represents WMI physical disk data
type Win32_DiskDrive struct {
	DeviceID  string
	Model     string
	MediaType string
}

// ListDevices enumerates physical drives via WMI.
func (g *WindowsGateway) ListDevices(ctx context.Context) ([]Device, error) {
	var drives []Win32_DiskDrive
	err := wmi.Query("SELECT DeviceID, Model, MediaType FROM Win32_DiskDrive", &drives)
	if err != nil {
		return nil, fmt.Errorf("%w: WMI query: %v", ErrToolUnavailable, err)
	}

	devices := []Device{}
	for _, d := range drives {
		devices = append(devices, Device{Name: d.DeviceID, Kind: KindDisk})
	}
	return devices, nil
}

func (g *WindowsGateway) FetchSmartText(ctx context.Context, drive string) (string, error) {
	return "", fmt.Errorf("%w: SMART telemetry", ErrUnsupported)
}

func (g *WindowsGateway) SecureErase(ctx context.Context, drive string) (string, error) {
	return "", fmt.Errorf("%w: secure erase", ErrUnsupported)
}

func (g *WindowsGateway) Open(drive string) (BlockDevice, error) {
	return nil, fmt.Errorf("%w: raw device reads", ErrUnsupported)
}

func isFatalRead(err error) bool {
	return errors.Is(err, os.ErrClosed)
}
