package testutil

import (
	"image"
	"sort"
	"sync"
)

// MemorySink records written images by name.
//
// Thread-safety: MemorySink is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	images map[string]image.Image
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{images: make(map[string]image.Image)}
}

// WriteImage stores img under name.
func (s *MemorySink) WriteImage(name string, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[name] = img
	return nil
}

// Names returns the written image names in sorted order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.images))
	for name := range s.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Image returns the image written under name, or nil.
func (s *MemorySink) Image(name string) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images[name]
}
