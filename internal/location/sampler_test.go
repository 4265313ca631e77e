package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestSimSamplerDeliversAndStops(t *testing.T) {
	s := NewSimSampler(-7.7956, 110.3695)
	s.Interval = 5 * time.Millisecond

	var mu sync.Mutex
	var got []Sample
	handle, err := s.Start(context.Background(), func(sample Sample) {
		mu.Lock()
		got = append(got, sample)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	handle.Stop()

	mu.Lock()
	count := len(got)
	mu.Unlock()
	if count == 0 {
		t.Fatalf("expected samples")
	}

	// No delivery after Stop returned.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	after := len(got)
	mu.Unlock()
	if after != count {
		t.Fatalf("samples delivered after stop: %d -> %d", count, after)
	}
}

func TestSimSamplerCurrent(t *testing.T) {
	s := NewSimSampler(-7.7956, 110.3695)
	cur, err := s.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Latitude != -7.7956 || cur.TimestampMs == 0 {
		t.Fatalf("unexpected current sample: %+v", cur)
	}
}

func newFeedServer(t *testing.T, samples []Sample, interval time.Duration) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, s := range samples {
			if err := conn.WriteJSON(s); err != nil {
				return
			}
			time.Sleep(interval)
		}
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFeedSamplerStream(t *testing.T) {
	samples := []Sample{
		{Latitude: -7.7956, Longitude: 110.3695, TimestampMs: 1},
		{Latitude: -7.8000, Longitude: 110.3700, TimestampMs: 2},
	}
	srv := newFeedServer(t, samples, time.Millisecond)
	defer srv.Close()

	f := NewFeedSampler(wsURL(srv))

	ch := make(chan Sample, 8)
	handle, err := f.Start(context.Background(), func(s Sample) { ch <- s })
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer handle.Stop()

	for i := range samples {
		select {
		case got := <-ch:
			if got != samples[i] {
				t.Fatalf("sample %d: got %+v want %+v", i, got, samples[i])
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for sample %d", i)
		}
	}
}

func TestFeedSamplerStopIsSynchronous(t *testing.T) {
	samples := make([]Sample, 100)
	for i := range samples {
		samples[i] = Sample{Latitude: float64(i), TimestampMs: int64(i + 1)}
	}
	srv := newFeedServer(t, samples, time.Millisecond)
	defer srv.Close()

	f := NewFeedSampler(wsURL(srv))

	var mu sync.Mutex
	count := 0
	handle, err := f.Start(context.Background(), func(Sample) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	handle.Stop()

	mu.Lock()
	atStop := count
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	after := count
	mu.Unlock()
	if after != atStop {
		t.Fatalf("samples delivered after stop: %d -> %d", atStop, after)
	}

	// Stop twice is safe.
	handle.Stop()
}

func TestFeedSamplerCurrentWaitsForFirstFrame(t *testing.T) {
	samples := []Sample{{Latitude: -7.7956, Longitude: 110.3695, TimestampMs: 42}}
	srv := newFeedServer(t, samples, time.Millisecond)
	defer srv.Close()

	f := NewFeedSampler(wsURL(srv))
	cur, err := f.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.TimestampMs != 42 {
		t.Fatalf("unexpected sample: %+v", cur)
	}
}

func TestFeedSamplerCurrentUnreachable(t *testing.T) {
	f := NewFeedSampler("ws://127.0.0.1:1/feed")
	if _, err := f.Current(context.Background()); err != ErrNoPosition {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
}
