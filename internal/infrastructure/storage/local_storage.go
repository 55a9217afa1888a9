package storage

import (
	"context"
	"net/url"
	"strings"
	"time"

	qmsapp "github.com/cultivo/backend/internal/application/qms"
)

var _ qmsapp.EvidenceStorage = (*LocalObjectStorage)(nil)

// LocalObjectStorage returns predictable URLs without contacting a backend.
// It is used in development when storage is disabled.
type LocalObjectStorage struct {
	BaseURL string
}

// NewLocalObjectStorage creates a LocalObjectStorage rooted at baseURL
func NewLocalObjectStorage(baseURL string) *LocalObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/evidence"
	}
	return &LocalObjectStorage{BaseURL: strings.TrimRight(baseURL, "/")}
}

// GenerateUploadURL returns the object URL with an expiry query parameter
func (s *LocalObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrStorageKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.ObjectURL(storageKey) + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}

// ObjectURL returns the URL under BaseURL
func (s *LocalObjectStorage) ObjectURL(storageKey string) string {
	return s.BaseURL + "/" + strings.TrimLeft(storageKey, "/")
}
