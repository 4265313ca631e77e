package record

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"runera-client/internal/location"
)

type fakeSampler struct {
	mu       sync.Mutex
	onSample func(location.Sample)
	starts   int
	stops    int
	noFix    bool
}

type fakeHandle struct{ s *fakeSampler }

func (h *fakeHandle) Stop() {
	h.s.mu.Lock()
	h.s.stops++
	h.s.onSample = nil
	h.s.mu.Unlock()
}

func (s *fakeSampler) Start(_ context.Context, onSample func(location.Sample)) (location.Handle, error) {
	s.mu.Lock()
	s.starts++
	s.onSample = onSample
	s.mu.Unlock()
	return &fakeHandle{s: s}, nil
}

func (s *fakeSampler) Current(context.Context) (location.Sample, error) {
	if s.noFix {
		return location.Sample{}, location.ErrNoPosition
	}
	return location.Sample{Latitude: -7.7956, Longitude: 110.3695, TimestampMs: 1}, nil
}

func (s *fakeSampler) push(sample location.Sample) {
	s.mu.Lock()
	cb := s.onSample
	s.mu.Unlock()
	if cb != nil {
		cb(sample)
	}
}

func walletFn() string { return "0xabc" }

func newTestRecorder(s *fakeSampler) *Recorder {
	return NewRecorder(s, walletFn, "device-1")
}

func TestStartRequiresWallet(t *testing.T) {
	r := NewRecorder(&fakeSampler{}, func() string { return "" }, "device-1")
	if err := r.Start(context.Background()); err != ErrPrecondition {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestStartRequiresPosition(t *testing.T) {
	r := newTestRecorder(&fakeSampler{noFix: true})
	if err := r.Start(context.Background()); err != ErrPrecondition {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
}

func TestStartWhileActiveRejected(t *testing.T) {
	s := &fakeSampler{}
	r := newTestRecorder(s)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Start(context.Background()); err != ErrSessionActive {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	if _, err := r.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestStopFromIdleIsNoOp(t *testing.T) {
	r := newTestRecorder(&fakeSampler{})
	run, err := r.Stop()
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if run.StartTimeMs != 0 || run.DurationSeconds != 0 {
		t.Fatalf("no-op stop must not produce a run: %+v", run)
	}
}

func TestSamplesAccumulateDistance(t *testing.T) {
	s := &fakeSampler{}
	r := newTestRecorder(s)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.push(location.Sample{Latitude: -7.7956, Longitude: 110.3695, TimestampMs: 1000})
	s.push(location.Sample{Latitude: -7.8000, Longitude: 110.3700, TimestampMs: 61000})

	status := r.Status()
	if status.State != StateRecording {
		t.Fatalf("expected recording, got %s", status.State)
	}
	if status.SampleCount != 2 {
		t.Fatalf("expected 2 samples, got %d", status.SampleCount)
	}
	if status.DistanceKm < 0.49 || status.DistanceKm > 0.51 {
		t.Fatalf("expected ~0.5 km, got %v", status.DistanceKm)
	}

	run, err := r.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if run.DistanceMeters < 490 || run.DistanceMeters > 510 {
		t.Fatalf("expected ~500 m, got %v", run.DistanceMeters)
	}
	if len(run.Samples) != 2 {
		t.Fatalf("expected samples in run")
	}
	if run.DeviceFingerprint != "device-1" {
		t.Fatalf("expected fingerprint on run")
	}

	if got := r.Status().State; got != StateIdle {
		t.Fatalf("expected idle after stop, got %s", got)
	}
}

func TestPauseStopsSamplerAndFreezesDistance(t *testing.T) {
	s := &fakeSampler{}
	r := newTestRecorder(s)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	s.push(location.Sample{Latitude: -7.7956, Longitude: 110.3695, TimestampMs: 1000})
	if err := r.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if s.stops != 1 {
		t.Fatalf("pause must stop the sampler")
	}

	before := r.Status().DistanceKm
	// A late sample cannot arrive (handle stopped), but even a stray
	// callback is ignored outside recording.
	r.onSample(location.Sample{Latitude: -7.9, Longitude: 110.4, TimestampMs: 2000})
	if got := r.Status().DistanceKm; got != before {
		t.Fatalf("distance changed while paused: %v -> %v", before, got)
	}

	if err := r.Resume(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s.starts != 2 {
		t.Fatalf("resume must restart the sampler")
	}
	if got := r.Status().DistanceKm; got != before {
		t.Fatalf("pause/resume with no samples changed distance: %v -> %v", before, got)
	}

	if _, err := r.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestPauseResumeTransitionGuards(t *testing.T) {
	s := &fakeSampler{}
	r := newTestRecorder(s)

	if err := r.Pause(); err != ErrNotRecording {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
	if err := r.Resume(context.Background()); err != ErrNotPaused {
		t.Fatalf("expected ErrNotPaused, got %v", err)
	}

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Resume(context.Background()); err != ErrNotPaused {
		t.Fatalf("resume while recording: expected ErrNotPaused, got %v", err)
	}
	if _, err := r.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestTimerTicksOnlyWhileRecording(t *testing.T) {
	oldInterval := tickInterval
	tickInterval = 5 * time.Millisecond
	defer func() { tickInterval = oldInterval }()

	s := &fakeSampler{}
	r := newTestRecorder(s)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	if err := r.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	paused := r.Status().ElapsedSeconds
	if paused == 0 {
		t.Fatalf("expected elapsed ticks before pause")
	}

	time.Sleep(40 * time.Millisecond)
	if got := r.Status().ElapsedSeconds; got != paused {
		t.Fatalf("timer advanced while paused: %d -> %d", paused, got)
	}

	if err := r.Resume(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if got := r.Status().ElapsedSeconds; got <= paused {
		t.Fatalf("timer did not resume: %d -> %d", paused, got)
	}

	run, err := r.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if run.DurationSeconds == 0 {
		t.Fatalf("expected duration on run")
	}
}
