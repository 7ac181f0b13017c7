package source

import (
	"context"
	"sync"
)

// MemoryStore holds source files in process memory. Default when no object
// storage is configured; also used by tests.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]File
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]File)}
}

func (s *MemoryStore) Put(_ context.Context, documentID string, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make([]byte, len(file.Data))
	copy(data, file.Data)
	s.files[documentID] = File{Name: file.Name, Data: data}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, documentID string) (File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[documentID]
	if !ok {
		return File{}, ErrNotFound
	}
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	return File{Name: f.Name, Data: data}, nil
}

func (s *MemoryStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, documentID)
	return nil
}
