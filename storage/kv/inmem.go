package kv

import "sync"

// inMemStore backs tests and the DEV server.
type inMemStore struct {
	mu    sync.RWMutex
	table map[string][]byte
}

var _ Store = (*inMemStore)(nil)

func NewInMemStore() *inMemStore {
	return &inMemStore{table: make(map[string][]byte)}
}

func (s *inMemStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.table[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *inMemStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.table[key] = cp
	return nil
}

func (s *inMemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table, key)
	return nil
}
