// Package blob abstracts APK artifact storage. The production backend is an
// S3-compatible bucket (Cloudflare R2); a memory implementation backs tests.
package blob

import (
	"context"
	"io"
	"sync"
)

// Uploader stores artifact bytes under a key. Uploads overwrite.
type Uploader interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
}

// Memory is an in-memory Uploader for tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemory creates an empty in-memory uploader.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

// Get returns the stored bytes for a key, for test assertions.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
