package imagehost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var errUnsupportedImage = errors.New("image must be a data:image URI or an http(s) URL")

// MemoryUploader keeps uploads in memory and hands out URLs under baseURL.
// It is used in development and tests.
type MemoryUploader struct {
	mu      sync.RWMutex
	images  map[string]string
	baseURL string
}

// NewMemoryUploader creates a MemoryUploader serving URLs under baseURL.
func NewMemoryUploader(baseURL string) *MemoryUploader {
	return &MemoryUploader{
		images:  make(map[string]string),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload records data and returns a fresh URL for it.
func (m *MemoryUploader) Upload(ctx context.Context, data string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &UploadError{Err: err}
	}
	if !isSupportedSource(data) {
		return nil, &UploadError{ClientCaused: true, Err: errUnsupportedImage}
	}

	id := uuid.New().String()
	url := fmt.Sprintf("%s/images/%s", m.baseURL, id)

	m.mu.Lock()
	m.images[id] = data
	m.mu.Unlock()

	return &UploadResult{SecureURL: url, PublicID: id}, nil
}

// Len returns the number of stored images.
func (m *MemoryUploader) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}

func isSupportedSource(data string) bool {
	return strings.HasPrefix(data, "data:image/") ||
		strings.HasPrefix(data, "https://") ||
		strings.HasPrefix(data, "http://")
}
