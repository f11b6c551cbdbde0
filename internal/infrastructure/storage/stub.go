package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
)

var _ shared.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in memory. Used in development when no
// bucket is configured and in tests.
type MemoryObjectStorage struct {
	// BaseURL prefixes the fake presigned URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "http://localhost:9000/unity",
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presign(key, expiresIn)
}

func (s *MemoryObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presign(key, expiresIn)
}

func (s *MemoryObjectStorage) presign(key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return s.BaseURL + "/" + key + "?" + q.Encode(), expiresAt, nil
}

func (s *MemoryObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errKeyRequired
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[key] = memoryObject{data: buf, contentType: contentType}
	s.mu.Unlock()
	return nil
}

func (s *MemoryObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errKeyRequired
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errKeyRequired
	}
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	return ok, nil
}

// Object returns a stored object's bytes and content type
func (s *MemoryObjectStorage) Object(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.data, obj.contentType, ok
}
