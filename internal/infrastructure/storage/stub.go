// Package storage provides object storage implementations for audio chunk payloads.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	voiceapp "github.com/nia/backend/internal/application/voice"
)

// StubAudioStorage is an in-memory implementation of AudioStore for
// development and tests. Payloads live in a process-local map, so chunk
// upload and archival flows work end to end without an S3 backend.
type StubAudioStorage struct {
	// BaseURL is the base URL for generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubAudioStorage creates a new StubAudioStorage
func NewStubAudioStorage() *StubAudioStorage {
	return &StubAudioStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure StubAudioStorage implements AudioStore
var _ voiceapp.AudioStore = (*StubAudioStorage)(nil)

// Upload stores a chunk payload in memory
func (s *StubAudioStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[storageKey] = buf
	s.mu.Unlock()
	return nil
}

// Download retrieves a chunk payload from memory
func (s *StubAudioStorage) Download(ctx context.Context, storageKey string) ([]byte, error) {
	if storageKey == "" {
		return nil, errors.New("storage key is required")
	}

	s.mu.RLock()
	data, ok := s.objects[storageKey]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New("object not found: " + storageKey)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Delete removes a chunk payload from memory
func (s *StubAudioStorage) Delete(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// Exists checks whether a chunk payload is present
func (s *StubAudioStorage) Exists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	return ok, nil
}

// GenerateDownloadURL generates a stub download URL
func (s *StubAudioStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)

	return url, expiresAt, nil
}

// Count returns the number of stored objects (for tests)
func (s *StubAudioStorage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
