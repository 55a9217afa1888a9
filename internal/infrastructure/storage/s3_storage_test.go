package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cultivo/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:           true,
		Bucket:            "qms-evidence",
		AccessKeyID:       "test-key",
		SecretAccessKey:   "test-secret",
		Region:            "us-east-1",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 10 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half configured keys return error", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "qms-evidence", s.GetBucket())
		assert.Equal(t, 10*time.Minute, s.presignExpiration)
	})

	t.Run("default presign expiration is 15 minutes", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.PresignExpiration = 0
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
	})

	t.Run("options override defaults", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig(),
			WithLogger(zaptest.NewLogger(t)),
			WithPresignExpiration(time.Hour),
		)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_ObjectURL(t *testing.T) {
	t.Run("custom endpoint uses path style base", func(t *testing.T) {
		s, err := NewS3ObjectStorage(testStorageConfig())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/qms-evidence/ebr/a/b.pdf", s.ObjectURL("/ebr/a/b.pdf"))
	})

	t.Run("public endpoint wins", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.PublicEndpoint = "https://cdn.example.com/evidence/"
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/evidence/ebr/a/b.pdf", s.ObjectURL("ebr/a/b.pdf"))
	})

	t.Run("aws default host", func(t *testing.T) {
		cfg := testStorageConfig()
		cfg.Endpoint = ""
		cfg.Region = "eu-west-1"
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://qms-evidence.s3.eu-west-1.amazonaws.com/k.png", s.ObjectURL("k.png"))
	})
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty storage key returns error", func(t *testing.T) {
		u, _, err := s.GenerateUploadURL(ctx, "", "image/jpeg", time.Minute)
		assert.ErrorIs(t, err, ErrStorageKeyRequired)
		assert.Empty(t, u)
	})

	t.Run("generates presigned URL", func(t *testing.T) {
		u, expiresAt, err := s.GenerateUploadURL(ctx, "ebr/1/checklist/2/photo.jpg", "image/jpeg", 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "http://localhost:9000/qms-evidence/"))
		assert.Contains(t, u, "X-Amz-Signature")
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(6*time.Minute)))
	})

	t.Run("uses default expiration when not provided", func(t *testing.T) {
		_, expiresAt, err := s.GenerateUploadURL(ctx, "ebr/x.pdf", "application/pdf", 0)
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now().Add(9*time.Minute)))
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", time.Minute)
	assert.ErrorIs(t, err, ErrStorageKeyRequired)

	u, _, err := s.GenerateDownloadURL(context.Background(), "ebr/x.pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "qms-evidence")
}

func TestLocalObjectStorage(t *testing.T) {
	s := NewLocalObjectStorage("")
	assert.Equal(t, "http://localhost:9000/evidence", s.BaseURL)

	u, expiresAt, err := s.GenerateUploadURL(context.Background(), "ebr/a.pdf", "application/pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:9000/evidence/ebr/a.pdf?expires="))
	assert.True(t, expiresAt.After(time.Now()))

	_, _, err = s.GenerateUploadURL(context.Background(), "", "", 0)
	assert.ErrorIs(t, err, ErrStorageKeyRequired)
}
