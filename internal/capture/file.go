package capture

import (
	"context"
	"os"
	"sync"
)

// FileProvider serves still frames from a JPEG on disk. It exists for
// development and simulation runs where no browser camera feed is attached.
type FileProvider struct {
	Path string
}

// Acquire opens the backing file. A missing or unreadable file is reported
// as ErrUnavailable so the workflow takes its manual fallback.
func (p *FileProvider) Acquire(_ context.Context, _ string) (Stream, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil || len(data) == 0 {
		return nil, ErrUnavailable
	}
	return &fileStream{data: data}, nil
}

type fileStream struct {
	data        []byte
	releaseOnce sync.Once
	released    bool
	mu          sync.Mutex
}

func (s *fileStream) Still(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, ErrReleased
	}
	return s.data, nil
}

func (s *fileStream) Release() {
	s.releaseOnce.Do(func() {
		s.mu.Lock()
		s.released = true
		s.mu.Unlock()
	})
}
