package location

import (
	"context"
	"time"
)

// Sample is one timestamped position from the device stream. Samples
// are immutable once captured and ordered by capture time.
type Sample struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	TimestampMs    int64   `json:"timestamp"`
	AccuracyMeters float64 `json:"accuracy,omitempty"`
}

// Sampler is a cancellable position stream. Start begins delivering
// samples to onSample until the returned handle is stopped. Stop is
// synchronous: once it returns, no further callback fires.
type Sampler interface {
	Start(ctx context.Context, onSample func(Sample)) (Handle, error)
	// Current returns the last known device position, used as the
	// precondition check before recording begins.
	Current(ctx context.Context) (Sample, error)
}

type Handle interface {
	Stop()
}

// SimSampler generates a deterministic route at a fixed interval, for
// development runs and tests. It advances roughly south-east from the
// origin on every tick.
type SimSampler struct {
	Origin   Sample
	Interval time.Duration
	StepDeg  float64
}

func NewSimSampler(lat, lng float64) *SimSampler {
	return &SimSampler{
		Origin:   Sample{Latitude: lat, Longitude: lng},
		Interval: time.Second,
		StepDeg:  0.00008,
	}
}

func (s *SimSampler) Current(_ context.Context) (Sample, error) {
	cur := s.Origin
	cur.TimestampMs = time.Now().UnixMilli()
	return cur, nil
}

func (s *SimSampler) Start(ctx context.Context, onSample func(Sample)) (Handle, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		step := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				step++
				onSample(Sample{
					Latitude:    s.Origin.Latitude - float64(step)*s.StepDeg,
					Longitude:   s.Origin.Longitude + float64(step)*s.StepDeg/2,
					TimestampMs: time.Now().UnixMilli(),
				})
			}
		}
	}()

	return &simHandle{cancel: cancel, done: done}, nil
}

type simHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *simHandle) Stop() {
	h.cancel()
	<-h.done
}
