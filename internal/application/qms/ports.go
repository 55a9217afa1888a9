package qms

import (
	"context"
	"time"
)

// EvidenceStorage issues upload URLs for checklist evidence files
type EvidenceStorage interface {
	// GenerateUploadURL returns a presigned PUT URL for the key and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// ObjectURL returns the durable URL of the stored object
	ObjectURL(storageKey string) string
}
