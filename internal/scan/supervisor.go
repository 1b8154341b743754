package scan

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"diskwarden/internal/device"
)

var (
	// ErrScanRunning is returned when a device already has a live scan.
	ErrScanRunning = errors.New("scan already running for device")

	// ErrJobNotFound is returned when no job, live or recently finished,
	// exists for a device.
	ErrJobNotFound = errors.New("no scan job for device")
)

// defaultRetention is how long a terminal job stays queryable before it is
// evicted from the job table.
const defaultRetention = 5 * time.Minute

// Opener opens a device for raw positioned reads.
type Opener interface {
	Open(drive string) (device.BlockDevice, error)
}

// Supervisor tracks at most one live scan per device, starts and cancels
// sweeps, and forwards engine progress to the event publisher.
type Supervisor struct {
	mu   sync.Mutex
	jobs map[string]*job

	opener    Opener
	publisher Publisher
	engine    Engine
	retention time.Duration
	wg        sync.WaitGroup
}

// NewSupervisor creates a supervisor with an empty job table.
func NewSupervisor(opener Opener, publisher Publisher) *Supervisor {
	return &Supervisor{
		jobs:      make(map[string]*job),
		opener:    opener,
		publisher: publisher,
		retention: defaultRetention,
	}
}

// Start launches a background sweep of the device. It returns immediately;
// progress is delivered through the publisher. A device with a non-terminal
// job refuses a second scan with ErrScanRunning.
func (s *Supervisor) Start(drive string) error {
	if err := device.ValidateName(drive); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[drive]; ok {
		if !existing.state.Terminal() {
			return ErrScanRunning
		}
		// Replacing a retained terminal snapshot.
		if existing.evict != nil {
			existing.evict.Stop()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		drive:     drive,
		state:     StatePending,
		startedAt: time.Now(),
		cancel:    cancel,
	}
	s.jobs[drive] = j

	s.wg.Add(1)
	go s.run(ctx, j)

	log.Printf("scan started for %s", drive)
	return nil
}

// Cancel requests cancellation of the device's live scan. Cancelling a device
// with no scan, or with an already-terminal job, is a no-op.
func (s *Supervisor) Cancel(drive string) {
	s.mu.Lock()
	j, ok := s.jobs[drive]
	if ok && !j.state.Terminal() && j.cancel != nil {
		j.cancel()
		log.Printf("scan cancellation requested for %s", drive)
	}
	s.mu.Unlock()
}

// Status returns a snapshot of the device's job, live or retained.
func (s *Supervisor) Status(drive string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[drive]
	if !ok {
		return Snapshot{}, ErrJobNotFound
	}
	return j.snapshot(), nil
}

// Active returns the number of non-terminal jobs.
func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, j := range s.jobs {
		if !j.state.Terminal() {
			n++
		}
	}
	return n
}

// Shutdown cancels all live scans and waits for their sweeps to finish.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	for _, j := range s.jobs {
		if !j.state.Terminal() && j.cancel != nil {
			j.cancel()
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// run drives one sweep to a terminal state. It owns all transitions past
// Pending.
func (s *Supervisor) run(ctx context.Context, j *job) {
	defer s.wg.Done()

	dev, err := s.opener.Open(j.drive)
	if err != nil {
		log.Printf("scan open %s: %v", j.drive, err)
		s.finish(j, StateFailed)
		return
	}
	defer dev.Close()

	s.mu.Lock()
	if total, terr := dev.Size(); terr == nil {
		j.total = total
	}
	j.state = StateRunning
	s.mu.Unlock()

	report := func(progress int, scanned int64, badSectors int) {
		s.mu.Lock()
		j.scanned = scanned
		j.badSectors = badSectors
		s.mu.Unlock()
		s.publisher.Publish(progressEvent(j.drive, progress, badSectors))
	}

	_, _, err = s.engine.Run(ctx, dev, report)
	switch {
	case err == nil:
		s.finish(j, StateCompleted)
	case errors.Is(err, context.Canceled):
		s.finish(j, StateCancelled)
	default:
		log.Printf("scan failed on %s: %v", j.drive, err)
		s.finish(j, StateFailed)
	}
}

// finish records the terminal state, publishes exactly one terminal event and
// schedules eviction of the snapshot after the retention window.
func (s *Supervisor) finish(j *job, state State) {
	s.mu.Lock()
	j.state = state
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	drive := j.drive
	j.evict = time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		if current, ok := s.jobs[drive]; ok && current == j {
			delete(s.jobs, drive)
		}
		s.mu.Unlock()
	})
	s.mu.Unlock()

	s.publisher.Publish(terminalEvent(drive, state))
	log.Printf("scan %s for %s", state, drive)
}
