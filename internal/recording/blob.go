package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// BlobStore puts finalized media somewhere addressable and returns an opaque
// URL for the artifact. The core never interprets the URL.
type BlobStore interface {
	Save(id uuid.UUID, mimeType string, data []byte) (string, error)
	Delete(id uuid.UUID) error
}

// FileStore writes media files under a local directory.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) Save(id uuid.UUID, mimeType string, data []byte) (string, error) {
	path := filepath.Join(s.Dir, id.String()+extFor(mimeType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	return "file://" + path, nil
}

func (s *FileStore) Delete(id uuid.UUID) error {
	matches, err := filepath.Glob(filepath.Join(s.Dir, id.String()+".*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func extFor(mimeType string) string {
	switch mimeType {
	case "video/webm":
		return ".webm"
	case "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}

// MemBlobStore holds media in memory. Test double.
type MemBlobStore struct {
	mu    sync.Mutex
	blobs map[uuid.UUID][]byte
}

func NewMemBlobStore() *MemBlobStore {
	return &MemBlobStore{blobs: make(map[uuid.UUID][]byte)}
}

func (s *MemBlobStore) Save(id uuid.UUID, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = data
	return "mem://" + id.String(), nil
}

func (s *MemBlobStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, id)
	return nil
}
