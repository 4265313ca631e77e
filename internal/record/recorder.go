package record

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"runera-client/internal/geo"
	"runera-client/internal/location"
)

var (
	ErrPrecondition    = errors.New("recording precondition failed: need wallet identity and a known position")
	ErrSessionActive   = errors.New("a recording session is already active")
	ErrNoActiveSession = errors.New("no active recording session")
	ErrNotRecording    = errors.New("not recording")
	ErrNotPaused       = errors.New("not paused")
)

var (
	nowFn        = time.Now
	tickInterval = time.Second
)

// Recorder owns the recording lifecycle: idle -> recording <-> paused,
// and stop back to idle with exactly one CompletedRun emitted. One
// session is active at a time.
type Recorder struct {
	sampler     location.Sampler
	walletFn    func() string
	fingerprint string

	mu          sync.Mutex
	state       State
	handle      location.Handle
	startedAtMs int64
	elapsed     int64
	track       geo.Track
	samples     []location.Sample
	last        location.Sample
	tickerStop  chan struct{}
}

func NewRecorder(sampler location.Sampler, walletFn func() string, fingerprint string) *Recorder {
	return &Recorder{
		sampler:     sampler,
		walletFn:    walletFn,
		fingerprint: fingerprint,
		state:       StateIdle,
	}
}

// Start transitions idle -> recording. It requires an active wallet
// identity and a known current position.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrSessionActive
	}
	r.mu.Unlock()

	if r.walletFn == nil || r.walletFn() == "" {
		return ErrPrecondition
	}
	if _, err := r.sampler.Current(ctx); err != nil {
		return ErrPrecondition
	}

	handle, err := r.sampler.Start(ctx, r.onSample)
	if err != nil {
		return ErrPrecondition
	}

	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		handle.Stop()
		return ErrSessionActive
	}

	r.state = StateRecording
	r.handle = handle
	r.startedAtMs = nowFn().UnixMilli()
	r.elapsed = 0
	r.track.Reset()
	r.samples = nil
	r.last = location.Sample{}
	r.tickerStop = make(chan struct{})
	go r.runTicker(r.tickerStop)
	r.mu.Unlock()
	return nil
}

// Pause freezes the timer and stops the sampler; no sample arrives
// after it returns.
func (r *Recorder) Pause() error {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return ErrNotRecording
	}
	r.state = StatePaused
	handle := r.handle
	r.handle = nil
	r.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
	return nil
}

func (r *Recorder) Resume(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StatePaused {
		r.mu.Unlock()
		return ErrNotPaused
	}
	r.mu.Unlock()

	handle, err := r.sampler.Start(ctx, r.onSample)
	if err != nil {
		return ErrPrecondition
	}

	r.mu.Lock()
	if r.state != StatePaused {
		r.mu.Unlock()
		handle.Stop()
		return ErrNotPaused
	}
	r.state = StateRecording
	r.handle = handle
	r.mu.Unlock()
	return nil
}

// Stop ends the session from recording or paused, emits the completed
// run and resets to idle. From idle it is a no-op reported as
// ErrNoActiveSession.
func (r *Recorder) Stop() (CompletedRun, error) {
	r.mu.Lock()
	if r.state == StateIdle {
		r.mu.Unlock()
		log.Printf("stop requested with no active session")
		return CompletedRun{}, ErrNoActiveSession
	}
	handle := r.handle
	r.handle = nil
	tickerStop := r.tickerStop
	r.tickerStop = nil
	r.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
	if tickerStop != nil {
		close(tickerStop)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	run := CompletedRun{
		DurationSeconds:   r.elapsed,
		DistanceMeters:    geo.CumulativeKm(points(r.samples)) * 1000,
		StartTimeMs:       r.startedAtMs,
		EndTimeMs:         nowFn().UnixMilli(),
		DeviceFingerprint: r.fingerprint,
		Samples:           r.samples,
	}

	r.state = StateIdle
	r.startedAtMs = 0
	r.elapsed = 0
	r.track.Reset()
	r.samples = nil
	r.last = location.Sample{}
	return run, nil
}

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		State:          r.state,
		StartedAtMs:    r.startedAtMs,
		ElapsedSeconds: r.elapsed,
		ElapsedDisplay: geo.FormatDuration(r.elapsed),
		DistanceKm:     r.track.TotalKm(),
		Pace:           geo.FormatPace(r.elapsed, r.track.TotalKm()),
		SampleCount:    len(r.samples),
	}
	if len(r.samples) > 0 {
		s.CurrentLatitude = r.last.Latitude
		s.CurrentLongitude = r.last.Longitude
	}
	return s
}

func (r *Recorder) onSample(sample location.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		return
	}
	r.samples = append(r.samples, sample)
	r.last = sample
	r.track.Add(geo.Point{Lat: sample.Latitude, Lng: sample.Longitude})
}

func (r *Recorder) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.state == StateRecording {
				r.elapsed++
			}
			r.mu.Unlock()
		}
	}
}

func points(samples []location.Sample) []geo.Point {
	pts := make([]geo.Point, len(samples))
	for i, s := range samples {
		pts[i] = geo.Point{Lat: s.Latitude, Lng: s.Longitude}
	}
	return pts
}
