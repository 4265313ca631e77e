package location

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	feedReadTimeout  = 60 * time.Second
	feedPingInterval = 30 * time.Second
	currentTimeout   = 10 * time.Second
)

var ErrNoPosition = errors.New("no position available")

var dialFeedFn = func(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	return conn, err
}

// FeedSampler reads the device position stream from the platform
// bridge over a websocket. Each frame is one JSON Sample.
type FeedSampler struct {
	URL string

	mu   sync.RWMutex
	last Sample
}

func NewFeedSampler(url string) *FeedSampler {
	return &FeedSampler{URL: url}
}

// Current returns the most recent sample seen on the feed. When the
// feed has not delivered anything yet it opens a short-lived
// connection and waits for the first frame.
func (f *FeedSampler) Current(ctx context.Context) (Sample, error) {
	f.mu.RLock()
	last := f.last
	f.mu.RUnlock()
	if last.TimestampMs != 0 {
		return last, nil
	}

	ctx, cancel := context.WithTimeout(ctx, currentTimeout)
	defer cancel()

	conn, err := dialFeedFn(ctx, f.URL)
	if err != nil {
		return Sample{}, ErrNoPosition
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(currentTimeout))
	var sample Sample
	if err := conn.ReadJSON(&sample); err != nil {
		return Sample{}, ErrNoPosition
	}
	f.remember(sample)
	return sample, nil
}

func (f *FeedSampler) Start(ctx context.Context, onSample func(Sample)) (Handle, error) {
	conn, err := dialFeedFn(ctx, f.URL)
	if err != nil {
		return nil, err
	}

	h := &feedHandle{conn: conn, done: make(chan struct{})}
	go f.readLoop(h, onSample)
	go h.pingLoop()
	return h, nil
}

func (f *FeedSampler) readLoop(h *feedHandle, onSample func(Sample)) {
	defer close(h.done)
	for {
		h.conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
		var sample Sample
		if err := h.conn.ReadJSON(&sample); err != nil {
			if !h.stopped() {
				log.Printf("location feed closed: %v", err)
			}
			return
		}
		f.remember(sample)
		if h.stopped() {
			return
		}
		onSample(sample)
	}
}

func (f *FeedSampler) remember(s Sample) {
	f.mu.Lock()
	f.last = s
	f.mu.Unlock()
}

type feedHandle struct {
	conn *websocket.Conn
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func (h *feedHandle) stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Stop closes the connection and waits for the read loop to exit, so
// no sample is delivered after it returns.
func (h *feedHandle) Stop() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	_ = h.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = h.conn.Close()
	<-h.done
}

func (h *feedHandle) pingLoop() {
	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			_ = h.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
		}
	}
}
