package voice

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
)

// AudioChunk records one uploaded audio segment of a call session.
// The bytes themselves live in the storage backend under StorageKey.
type AudioChunk struct {
	shared.BaseEntity
	SessionID  uuid.UUID
	Sequence   int
	Size       int64
	StorageKey string
}

// TableName returns the table name for GORM
func (AudioChunk) TableName() string {
	return "audio_chunks"
}

func newAudioChunk(sessionID uuid.UUID, sequence int, size int64) *AudioChunk {
	return &AudioChunk{
		BaseEntity: shared.NewBaseEntity(),
		SessionID:  sessionID,
		Sequence:   sequence,
		Size:       size,
		StorageKey: ChunkStorageKey(sessionID, sequence),
	}
}

// ChunkStorageKey builds the storage object key for a chunk
func ChunkStorageKey(sessionID uuid.UUID, sequence int) string {
	return fmt.Sprintf("voice/%s/%06d.chunk", sessionID, sequence)
}
