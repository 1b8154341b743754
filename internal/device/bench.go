package device

import (
	"fmt"
	"io"
	"time"
)

// BenchmarkRead measures sequential read throughput over the first size bytes
// of the device and returns it in MB/s.
func BenchmarkRead(dev BlockDevice, size int64) (float64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("benchmark size must be positive, got %d", size)
	}
	total, err := dev.Size()
	if err != nil {
		return 0, err
	}
	if total < size {
		size = total
	}
	if size == 0 {
		return 0, fmt.Errorf("%w: device has no addressable range", ErrDeviceUnavailable)
	}

	buf := make([]byte, size)
	start := time.Now()
	if _, err := dev.ReadAt(buf, 0); err != nil && err != io.EOF {
		return 0, err
	}
	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}

	return float64(size) / elapsed.Seconds() / (1024 * 1024), nil
}
