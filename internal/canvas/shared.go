package canvas

import (
	"bytes"
	"image/png"
	"sync"
)

// Shared wraps a Canvas behind a RWMutex so the ping server can write while
// the web api reads.
type Shared struct {
	mu sync.RWMutex
	c  *Canvas
}

func NewShared(width, height uint16) *Shared {
	return &Shared{c: New(width, height)}
}

func (s *Shared) Width() uint16  { return s.c.width }
func (s *Shared) Height() uint16 { return s.c.height }

func (s *Shared) Get(x, y uint16) (Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Get(x, y)
}

func (s *Shared) Set(x, y uint16, col Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Set(x, y, col)
}

// Snapshot returns a copy the caller may read without holding the lock.
func (s *Shared) Snapshot() *Canvas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Clone()
}

// EncodePNG renders the current state as a PNG snapshot.
func (s *Shared) EncodePNG() ([]byte, error) {
	img := s.Snapshot().Image()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
