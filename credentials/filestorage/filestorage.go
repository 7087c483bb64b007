package filestorage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jrsteele09/fogeapi-client/credentials"
	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
)

var _ credentials.Storage = (*FileStorage)(nil)

// FileStorage keeps entries in a single JSON object on disk. Every write
// rewrites the whole file through a temp file and rename.
type FileStorage struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

func New(path string) (*FileStorage, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("credential file path is required")
	}

	s := &FileStorage{
		path:   path,
		values: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileStorage) SetAll(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	for k, v := range entries {
		next[k] = v
	}
	return s.persistLocked(next)
}

func (s *FileStorage) RemoveAll(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLocked()
	changed := false
	for _, k := range keys {
		if _, ok := next[k]; ok {
			delete(next, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persistLocked(next)
}

func (s *FileStorage) Close() error {
	return nil
}

func (s *FileStorage) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return clienterrors.Wrapf(err, "read credential file")
	}
	if len(b) == 0 {
		return nil
	}

	decoded := make(map[string]string)
	if err := json.Unmarshal(b, &decoded); err != nil {
		return clienterrors.Wrapf(err, "decode credential file")
	}
	s.values = decoded
	return nil
}

func (s *FileStorage) copyLocked() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// persistLocked writes next to disk and only then swaps it in memory.
func (s *FileStorage) persistLocked(next map[string]string) error {
	b, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return clienterrors.Wrapf(err, "encode credential file")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return clienterrors.Wrapf(err, "mkdir credential dir")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return clienterrors.Wrapf(err, "write credential file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return clienterrors.Wrapf(err, "replace credential file")
	}

	s.values = next
	return nil
}
