package record

import "runera-client/internal/location"

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StatePaused    State = "paused"
)

// Status is a read-only snapshot of the active session, shaped for the
// control API.
type Status struct {
	State            State   `json:"state"`
	StartedAtMs      int64   `json:"started_at_ms,omitempty"`
	ElapsedSeconds   int64   `json:"elapsed_seconds"`
	ElapsedDisplay   string  `json:"elapsed_display"`
	DistanceKm       float64 `json:"distance_km"`
	Pace             string  `json:"pace"`
	SampleCount      int     `json:"sample_count"`
	CurrentLatitude  float64 `json:"current_latitude,omitempty"`
	CurrentLongitude float64 `json:"current_longitude,omitempty"`
}

// CompletedRun is the immutable hand-off from the recorder to the
// submission protocol. Produced exactly once per stop.
type CompletedRun struct {
	DurationSeconds   int64             `json:"duration_seconds"`
	DistanceMeters    float64           `json:"distance_meters"`
	StartTimeMs       int64             `json:"start_time_ms"`
	EndTimeMs         int64             `json:"end_time_ms"`
	DeviceFingerprint string            `json:"device_fingerprint"`
	Samples           []location.Sample `json:"samples,omitempty"`
}
