//go:build !linux && !windows

package device

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// UnsupportedGateway is a fallback for unsupported platforms
type UnsupportedGateway struct{}

// newPlatformGateway creates a fallback device gateway for unsupported platforms
func newPlatformGateway() Gateway {
	return &UnsupportedGateway{}
}

func (g *UnsupportedGateway) ListDevices(ctx context.Context) ([]Device, error) {
	return nil, fmt.Errorf("%w: device enumeration", ErrUnsupported)
}

func (g *UnsupportedGateway) FetchSmartText(ctx context.Context, drive string) (string, error) {
	return "", fmt.Errorf("%w: SMART telemetry", ErrUnsupported)
}

func (g *UnsupportedGateway) SecureErase(ctx context.Context, drive string) (string, error) {
	return "", fmt.Errorf("%w: secure erase", ErrUnsupported)
}

func (g *UnsupportedGateway) Open(drive string) (BlockDevice, error) {
	return nil, fmt.Errorf("%w: raw device reads", ErrUnsupported)
}

func isFatalRead(err error) bool {
	return errors.Is(err, os.ErrClosed)
}
