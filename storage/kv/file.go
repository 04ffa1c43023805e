package kv

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileStore keeps each key in its own file under a root directory.
type fileStore struct {
	mu   sync.Mutex
	root string
}

var _ Store = (*fileStore)(nil)

func NewFileStore(root string) (*fileStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &fileStore{root: root}, nil
}

func (s *fileStore) path(key string) string {
	// keys may carry namespace separators; keep them filesystem-safe
	key = strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(s.root, key+".json")
}

func (s *fileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *fileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(s.path(key), value, 0o600)
}

func (s *fileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
