package device

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolUnavailable means the external binary could not be invoked at
	// all (missing from PATH, not executable). Fatal to the calling
	// request, not to the service.
	ErrToolUnavailable = errors.New("external tool unavailable")

	// ErrAccessDenied means the tool ran but reported a permission or
	// device-path problem. Surfaced distinctly so callers can prompt for
	// elevated privilege.
	ErrAccessDenied = errors.New("device access denied")

	// ErrDeviceUnavailable means the device disappeared or the I/O
	// subsystem failed in a way not attributable to a single sector.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrUnsupported means the operation is not implemented on this
	// platform.
	ErrUnsupported = errors.New("operation not supported on this platform")

	// ErrInvalidName rejects device identifiers that cannot safely be
	// interpolated into a /dev path.
	ErrInvalidName = errors.New("invalid device name")
)

// ToolError is a non-zero exit from an external tool, carrying its stderr.
type ToolError struct {
	Tool   string
	Stderr string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Tool, strings.TrimSpace(e.Stderr))
}

// ValidateName rejects identifiers with path separators or relative
// components, so "sda" is accepted but "../sda" and "mapper/root" are not.
func ValidateName(drive string) error {
	if drive == "" || strings.ContainsAny(drive, "/\\") || strings.Contains(drive, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, drive)
	}
	return nil
}

// classifyToolFailure maps a tool's non-zero exit to the error taxonomy based
// on its stderr.
func classifyToolFailure(tool, stderr string) error {
	if indicatesAccessDenied(stderr) {
		return fmt.Errorf("%w: %s", ErrAccessDenied, strings.TrimSpace(stderr))
	}
	return &ToolError{Tool: tool, Stderr: stderr}
}

func indicatesAccessDenied(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, marker := range []string{
		"permission denied",
		"operation not permitted",
		"no such file or directory",
		"requires root",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Fatal reports whether a read error means the device itself is gone, as
// opposed to a single unreadable sector.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDeviceUnavailable) {
		return true
	}
	return isFatalRead(err)
}
