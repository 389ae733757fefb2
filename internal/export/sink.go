package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives downloaded documents.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) error
}

// DirSink writes each document to a file in Dir, replacing an existing
// file of the same name.
type DirSink struct {
	Dir string
}

func (s DirSink) Save(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("export: create %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, filepath.Base(name))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("export: rename %s: %w", path, err)
	}
	return nil
}

// MemorySink keeps downloads in memory.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *MemorySink) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[name] = append([]byte(nil), data...)
	return nil
}

// File returns a saved document.
func (s *MemorySink) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Len returns the number of saved documents.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
