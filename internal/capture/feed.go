package capture

import (
	"context"
	"log/slog"
	"sync"
)

// feed buffers the most recent frame pushed by a connected camera source.
// Frames are latest-wins: a new frame replaces an unconsumed one rather than
// queueing, to keep still extraction close to live.
type feed struct {
	mu     sync.Mutex
	frames chan []byte
	closed bool
}

func newFeed() *feed {
	return &feed{frames: make(chan []byte, 1)}
}

func (f *feed) push(frame []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.frames <- frame:
	default:
		// Drop the stale frame and keep the fresh one.
		select {
		case <-f.frames:
		default:
		}
		select {
		case f.frames <- frame:
		default:
		}
	}
}

func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.frames)
	}
}

// FeedProvider implements Provider on top of browser-pushed camera feeds.
// A feed exists while the frontend keeps a /ws/camera connection open for
// the device; Acquire fails with ErrUnavailable when no feed is live.
type FeedProvider struct {
	mu    sync.RWMutex
	feeds map[string]*feed
}

// NewFeedProvider creates an empty feed registry.
func NewFeedProvider() *FeedProvider {
	return &FeedProvider{feeds: make(map[string]*feed)}
}

// Register attaches a camera feed for a device, replacing any previous one.
func (p *FeedProvider) Register(deviceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.feeds[deviceID]; ok {
		existing.close()
	}
	p.feeds[deviceID] = newFeed()
	slog.Info("Camera feed registered", "device_id", deviceID)
}

// Unregister detaches the camera feed for a device.
func (p *FeedProvider) Unregister(deviceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.feeds[deviceID]; ok {
		existing.close()
		delete(p.feeds, deviceID)
		slog.Info("Camera feed unregistered", "device_id", deviceID)
	}
}

// Push delivers one JPEG frame from the device's camera source.
func (p *FeedProvider) Push(deviceID string, frame []byte) {
	p.mu.RLock()
	f := p.feeds[deviceID]
	p.mu.RUnlock()
	if f != nil {
		f.push(frame)
	}
}

// Connected reports whether a live feed exists for the device.
func (p *FeedProvider) Connected(deviceID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.feeds[deviceID] != nil
}

// Acquire opens a stream over the device's live feed.
func (p *FeedProvider) Acquire(_ context.Context, deviceID string) (Stream, error) {
	p.mu.RLock()
	f := p.feeds[deviceID]
	p.mu.RUnlock()
	if f == nil {
		return nil, ErrUnavailable
	}
	return &feedStream{feed: f, released: make(chan struct{})}, nil
}

// feedStream is one acquisition over a live feed.
type feedStream struct {
	feed        *feed
	releaseOnce sync.Once
	released    chan struct{}
}

// Still waits for the next frame from the feed.
func (s *feedStream) Still(ctx context.Context) ([]byte, error) {
	select {
	case <-s.released:
		return nil, ErrReleased
	default:
	}

	select {
	case frame, ok := <-s.feed.frames:
		if !ok || frame == nil {
			return nil, ErrNoFrame
		}
		return frame, nil
	case <-s.released:
		return nil, ErrReleased
	case <-ctx.Done():
		return nil, ErrNoFrame
	}
}

// Release detaches the acquisition. The feed itself stays open for the
// owning WebSocket connection; only this stream stops consuming.
func (s *feedStream) Release() {
	s.releaseOnce.Do(func() {
		close(s.released)
	})
}
