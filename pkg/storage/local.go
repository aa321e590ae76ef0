package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs under a root directory. Keys are slash-separated
// relative paths.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(s.path(key))
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	return os.Remove(s.path(key))
}
