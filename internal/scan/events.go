package scan

// Event type strings sent over the subscriber channel.
const (
	EventProgress  = "scan_progress"
	EventComplete  = "scan_complete"
	EventFailed    = "scan_failed"
	EventCancelled = "scan_cancelled"
)

// ProgressEvent reports sweep progress for one device.
type ProgressEvent struct {
	Type       string `json:"type"`
	Drive      string `json:"drive"`
	Progress   int    `json:"progress"`
	BadSectors int    `json:"bad_sectors"`
}

// TerminalEvent marks a scan's final state.
type TerminalEvent struct {
	Type  string `json:"type"`
	Drive string `json:"drive"`
}

// Publisher delivers events to subscribers. Implementations must never block
// the caller.
type Publisher interface {
	Publish(event any)
}

func progressEvent(drive string, progress, badSectors int) ProgressEvent {
	return ProgressEvent{
		Type:       EventProgress,
		Drive:      drive,
		Progress:   progress,
		BadSectors: badSectors,
	}
}

func terminalEvent(drive string, state State) TerminalEvent {
	ev := TerminalEvent{Drive: drive}
	switch state {
	case StateCancelled:
		ev.Type = EventCancelled
	case StateFailed:
		ev.Type = EventFailed
	default:
		ev.Type = EventComplete
	}
	return ev
}
