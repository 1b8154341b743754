package scan

import (
	"context"
	"time"
)

// State is the lifecycle state of a scan job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// job is one in-flight or recently finished scan, owned by the Supervisor.
// All fields are guarded by the supervisor's mutex.
type job struct {
	drive      string
	state      State
	scanned    int64
	total      int64
	badSectors int
	startedAt  time.Time

	cancel context.CancelFunc
	evict  *time.Timer
}

// Snapshot is a point-in-time copy of a job, safe to hand to callers.
type Snapshot struct {
	Drive      string    `json:"drive"`
	State      State     `json:"state"`
	Progress   int       `json:"progress"`
	Scanned    int64     `json:"scanned_bytes"`
	Total      int64     `json:"total_bytes"`
	BadSectors int       `json:"bad_sectors"`
	StartedAt  time.Time `json:"started_at"`
}

func (j *job) snapshot() Snapshot {
	progress := 0
	if j.total > 0 {
		progress = int(j.scanned * 100 / j.total)
	}
	return Snapshot{
		Drive:      j.drive,
		State:      j.state,
		Progress:   progress,
		Scanned:    j.scanned,
		Total:      j.total,
		BadSectors: j.badSectors,
		StartedAt:  j.startedAt,
	}
}
