//go:build linux

package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"unsafe"

	"golang.org/x/sys/unix"
)

// LinuxGateway drives lsblk, smartctl and hdparm, and opens /dev nodes for
// raw reads.
type LinuxGateway struct{}

// newPlatformGateway creates a new Linux device gateway
func newPlatformGateway() Gateway {
	return &LinuxGateway{}
}

// ListDevices enumerates disk-type block devices via lsblk.
func (g *LinuxGateway) ListDevices(ctx context.Context) ([]Device, error) {
	out, err := exec.CommandContext(ctx, "lsblk", "-d", "-n", "-o", "NAME,TYPE").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, classifyToolFailure("lsblk", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%w: lsblk: %v", ErrToolUnavailable, err)
	}
	return parseDeviceList(string(out)), nil
}

// FetchSmartText runs smartctl -A and returns its raw output.
func (g *LinuxGateway) FetchSmartText(ctx context.Context, drive string) (string, error) {
	if err := ValidateName(drive); err != nil {
		return "", err
	}
	return g.runTool(ctx, "smartctl", "-A", "/dev/"+drive)
}

// SecureErase issues an ATA security erase through hdparm and returns the
// tool's confirmation output.
func (g *LinuxGateway) SecureErase(ctx context.Context, drive string) (string, error) {
	if err := ValidateName(drive); err != nil {
		return "", err
	}
	return g.runTool(ctx, "hdparm",
		"--user-master", "u", "--security-erase", "password", "/dev/"+drive)
}

func (g *LinuxGateway) runTool(ctx context.Context, tool string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s: %v", ErrToolUnavailable, tool, err)
		}
		return "", classifyToolFailure(tool, stderr.String())
	}
	return stdout.String(), nil
}

// Open opens the device node read-only for the surface scan.
func (g *LinuxGateway) Open(drive string) (BlockDevice, error) {
	if err := ValidateName(drive); err != nil {
		return nil, err
	}
	f, err := os.OpenFile("/dev/"+drive, os.O_RDONLY, 0)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return &blockFile{f: f}, nil
}

type blockFile struct {
	f *os.File
}

func (b *blockFile) ReadAt(p []byte, off int64) (int, error) {
	return b.f.ReadAt(p, off)
}

// Size returns the device's addressable size via the BLKGETSIZE64 ioctl,
// falling back to a seek to the end for regular files.
func (b *blockFile) Size() (int64, error) {
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, b.f.Fd(),
		unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size)))
	if errno == 0 {
		return int64(size), nil
	}

	end, err := b.f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return end, nil
}

func (b *blockFile) Close() error {
	return b.f.Close()
}

// isFatalRead reports errnos that mean the whole device is gone rather than
// one bad sector.
func isFatalRead(err error) bool {
	return errors.Is(err, unix.ENODEV) ||
		errors.Is(err, unix.ENXIO) ||
		errors.Is(err, unix.EBADF) ||
		errors.Is(err, os.ErrClosed)
}
