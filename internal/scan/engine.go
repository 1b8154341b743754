package scan

import (
	"context"
	"fmt"
	"io"
	"time"

	"diskwarden/internal/device"
)

// DefaultSectorSize is the canonical chunk unit for a surface sweep.
const DefaultSectorSize = 512

// Engine sweeps one device sector by sector, counting unreadable sectors.
// The zero value is ready to use.
type Engine struct {
	// SectorSize is the read chunk size; DefaultSectorSize when zero.
	SectorSize int64
	// Interval, when set, pauses the sweep between chunks. Useful to keep
	// a scan from saturating the device it is checking.
	Interval time.Duration
}

// progressFunc receives the integer progress percentage whenever it changes,
// along with bytes scanned so far and the running bad-sector count.
type progressFunc func(progress int, scanned int64, badSectors int)

// Run sweeps the device from offset 0 to its full addressable size.
//
// A failed chunk read is a finding, not a fatal error: the bad-sector counter
// is incremented and the sweep continues. A device-level failure aborts with
// an error wrapping device.ErrDeviceUnavailable. Cancellation is observed
// cooperatively at chunk boundaries and surfaces as the context's error.
func (e *Engine) Run(ctx context.Context, dev device.BlockDevice, report progressFunc) (int64, int, error) {
	sector := e.SectorSize
	if sector <= 0 {
		sector = DefaultSectorSize
	}

	total, err := dev.Size()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", device.ErrDeviceUnavailable, err)
	}
	if total <= 0 {
		return 0, 0, fmt.Errorf("%w: no addressable range", device.ErrDeviceUnavailable)
	}

	buf := make([]byte, sector)
	var scanned int64
	badSectors := 0
	last := 0
	report(0, 0, 0)

	for scanned < total {
		// Chunk boundary: the cancellation hook and the yield point that
		// keeps one sweep from starving everything else.
		if err := ctx.Err(); err != nil {
			return scanned, badSectors, err
		}

		n := sector
		if remaining := total - scanned; remaining < n {
			n = remaining
		}
		if _, rerr := dev.ReadAt(buf[:n], scanned); rerr != nil && rerr != io.EOF {
			if device.Fatal(rerr) {
				return scanned, badSectors, fmt.Errorf("%w: %v", device.ErrDeviceUnavailable, rerr)
			}
			badSectors++
		}
		scanned += n

		if pct := int(scanned * 100 / total); pct != last {
			report(pct, scanned, badSectors)
			last = pct
		}

		if e.Interval > 0 {
			select {
			case <-ctx.Done():
				return scanned, badSectors, ctx.Err()
			case <-time.After(e.Interval):
			}
		}
	}

	return scanned, badSectors, nil
}
