// Package imagehost uploads profile pictures to an external image host.
package imagehost

import (
	"context"
	"errors"
	"fmt"
)

// Uploader stores an image and returns its public location. data is either a
// data URI (data:image/...) or a remote http(s) URL the host can fetch.
type Uploader interface {
	Upload(ctx context.Context, data string) (*UploadResult, error)
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	SecureURL string
	PublicID  string
}

// UploadError describes a failed upload. ClientCaused is set when the host
// rejected the image itself rather than failing to process it.
type UploadError struct {
	ClientCaused bool
	Status       int
	Err          error
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("image upload failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("image upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// IsClientCaused reports whether err is an UploadError caused by the image.
func IsClientCaused(err error) bool {
	var upErr *UploadError
	return errors.As(err, &upErr) && upErr.ClientCaused
}
