package voice

import (
	"context"
	"time"
)

// AudioStore defines the object storage operations the voice session
// service needs for audio chunk payloads. Implemented by the S3 client
// and the in-memory stub in infrastructure/storage.
type AudioStore interface {
	// Upload stores a chunk payload under the storage key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// Download retrieves a chunk payload by storage key
	Download(ctx context.Context, storageKey string) ([]byte, error)

	// Delete removes a chunk payload
	Delete(ctx context.Context, storageKey string) error

	// Exists checks whether a chunk payload is present
	Exists(ctx context.Context, storageKey string) (bool, error)

	// GenerateDownloadURL returns a presigned URL for direct playback or
	// archival download, with its expiry time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}
