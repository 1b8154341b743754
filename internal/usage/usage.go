package usage

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
)

// Info represents filesystem usage for one mounted partition
type Info struct {
	Device     string  `json:"device"`
	Mountpoint string  `json:"mountpoint"`
	Filesystem string  `json:"filesystem"`
	Total      uint64  `json:"total_mb"`
	Used       uint64  `json:"used_mb"`
	Available  uint64  `json:"available_mb"`
	Usage      float64 `json:"usage_percent"`
}

// Reader interface for filesystem usage monitoring
type Reader interface {
	GetInfo(ctx context.Context) ([]*Info, error)
}

type gopsutilReader struct{}

// NewReader creates a new filesystem usage reader
func NewReader() Reader {
	return &gopsutilReader{}
}

// GetInfo returns usage for every mounted partition
func (r *gopsutilReader) GetInfo(ctx context.Context) ([]*Info, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	var infos []*Info
	for _, partition := range partitions {
		u, err := disk.UsageWithContext(ctx, partition.Mountpoint)
		if err != nil {
			continue // Skip partitions we can't read
		}

		infos = append(infos, &Info{
			Device:     partition.Device,
			Mountpoint: partition.Mountpoint,
			Filesystem: partition.Fstype,
			Total:      u.Total / (1024 * 1024),
			Used:       u.Used / (1024 * 1024),
			Available:  u.Free / (1024 * 1024),
			Usage:      u.UsedPercent,
		})
	}

	return infos, nil
}
