package platform

import (
	"fmt"
	"runtime"
)

// SupportedOS represents supported operating systems
type SupportedOS string

const (
	Linux   SupportedOS = "linux"
	Windows SupportedOS = "windows"
)

// GetOS returns the current operating system
func GetOS() SupportedOS {
	return SupportedOS(runtime.GOOS)
}

// IsSupported returns true if the current OS is supported
func IsSupported() bool {
	os := GetOS()
	return os == Linux || os == Windows
}

// CanScan reports whether surface scans, SMART telemetry and secure erase are
// available. Those paths depend on the Linux tool chain and raw /dev reads;
// Windows supports device enumeration only.
func CanScan() bool {
	return GetOS() == Linux
}

// ValidateSupport returns an error if the current OS is not supported
func ValidateSupport() error {
	if !IsSupported() {
		return fmt.Errorf("unsupported operating system: %s. Supported: linux, windows", runtime.GOOS)
	}
	return nil
}
