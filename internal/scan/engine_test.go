package scan

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskwarden/internal/device"
)

// fakeDevice is an in-memory block device with injectable faults.
type fakeDevice struct {
	size     int64
	badAt    map[int64]bool  // offsets returning a per-sector read error
	fatalAt  map[int64]bool  // offsets returning a device-gone error
	sizeErr  error
	gate     chan struct{} // when non-nil, ReadAt blocks until it is closed
	cancelAt int64         // offset at which cancelFn is invoked (-1: never)
	cancelFn func()
}

func newFakeDevice(size int64) *fakeDevice {
	return &fakeDevice{size: size, cancelAt: -1}
}

func (d *fakeDevice) ReadAt(p []byte, off int64) (int, error) {
	if d.gate != nil {
		<-d.gate
	}
	if d.cancelFn != nil && off == d.cancelAt {
		d.cancelFn()
	}
	if d.fatalAt[off] {
		return 0, device.ErrDeviceUnavailable
	}
	if d.badAt[off] {
		return 0, errors.New("unrecovered read error")
	}
	if off >= d.size {
		return 0, io.EOF
	}
	n := len(p)
	if off+int64(n) > d.size {
		n = int(d.size - off)
	}
	return n, nil
}

func (d *fakeDevice) Size() (int64, error) {
	if d.sizeErr != nil {
		return 0, d.sizeErr
	}
	return d.size, nil
}

func (d *fakeDevice) Close() error { return nil }

// report collector
type sweepTrace struct {
	progress   []int
	badSectors []int
}

func (tr *sweepTrace) report(progress int, scanned int64, badSectors int) {
	tr.progress = append(tr.progress, progress)
	tr.badSectors = append(tr.badSectors, badSectors)
}

func TestSweepProgressSequence(t *testing.T) {
	dev := newFakeDevice(2048)
	var tr sweepTrace
	e := &Engine{SectorSize: 512}

	scanned, bad, err := e.Run(context.Background(), dev, tr.report)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), scanned)
	assert.Equal(t, 0, bad)
	assert.Equal(t, []int{0, 25, 50, 75, 100}, tr.progress)
}

func TestSweepProgressIsMonotonic(t *testing.T) {
	dev := newFakeDevice(100 * 512)
	var tr sweepTrace
	e := &Engine{SectorSize: 512}

	_, _, err := e.Run(context.Background(), dev, tr.report)
	require.NoError(t, err)

	require.NotEmpty(t, tr.progress)
	assert.Equal(t, 0, tr.progress[0])
	assert.Equal(t, 100, tr.progress[len(tr.progress)-1])
	for i := 1; i < len(tr.progress); i++ {
		assert.Greater(t, tr.progress[i], tr.progress[i-1],
			"progress must strictly increase between reports")
	}
}

func TestBadSectorDoesNotAbortSweep(t *testing.T) {
	dev := newFakeDevice(2048)
	dev.badAt = map[int64]bool{512: true, 1024: true}
	var tr sweepTrace
	e := &Engine{SectorSize: 512}

	scanned, bad, err := e.Run(context.Background(), dev, tr.report)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), scanned)
	assert.Equal(t, 2, bad)
	assert.Equal(t, 100, tr.progress[len(tr.progress)-1])
	assert.Equal(t, 2, tr.badSectors[len(tr.badSectors)-1])
}

func TestFatalReadAbortsSweep(t *testing.T) {
	dev := newFakeDevice(2048)
	dev.fatalAt = map[int64]bool{1024: true}
	var tr sweepTrace
	e := &Engine{SectorSize: 512}

	scanned, _, err := e.Run(context.Background(), dev, tr.report)
	assert.ErrorIs(t, err, device.ErrDeviceUnavailable)
	assert.Equal(t, int64(1024), scanned)
}

func TestCancellationObservedBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dev := newFakeDevice(2048)
	dev.cancelAt = 512
	dev.cancelFn = cancel
	var tr sweepTrace
	e := &Engine{SectorSize: 512}

	scanned, _, err := e.Run(ctx, dev, tr.report)
	assert.ErrorIs(t, err, context.Canceled)
	// The in-flight chunk finishes; the sweep stops at the next boundary.
	assert.Equal(t, int64(1024), scanned)
	assert.Less(t, tr.progress[len(tr.progress)-1], 100)
}

func TestSizeFailureIsDeviceUnavailable(t *testing.T) {
	dev := newFakeDevice(2048)
	dev.sizeErr = errors.New("ioctl failed")
	e := &Engine{SectorSize: 512}

	_, _, err := e.Run(context.Background(), dev, func(int, int64, int) {})
	assert.ErrorIs(t, err, device.ErrDeviceUnavailable)
}

func TestEmptyDeviceIsDeviceUnavailable(t *testing.T) {
	dev := newFakeDevice(0)
	e := &Engine{SectorSize: 512}

	_, _, err := e.Run(context.Background(), dev, func(int, int64, int) {})
	assert.ErrorIs(t, err, device.ErrDeviceUnavailable)
}

func TestUnalignedFinalChunk(t *testing.T) {
	dev := newFakeDevice(1000)
	var tr sweepTrace
	e := &Engine{SectorSize: 512}

	scanned, _, err := e.Run(context.Background(), dev, tr.report)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), scanned)
	assert.Equal(t, 100, tr.progress[len(tr.progress)-1])
}
