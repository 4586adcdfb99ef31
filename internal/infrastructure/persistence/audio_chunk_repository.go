package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nia/backend/internal/domain/voice"
	"github.com/nia/backend/internal/infrastructure/persistence/models"
)

// GormAudioChunkRepository implements voice.ChunkRepository using GORM
type GormAudioChunkRepository struct {
	db *gorm.DB
}

// NewGormAudioChunkRepository creates a new GormAudioChunkRepository
func NewGormAudioChunkRepository(db *gorm.DB) *GormAudioChunkRepository {
	return &GormAudioChunkRepository{db: db}
}

// FindBySession finds all chunks of a session in sequence order
func (r *GormAudioChunkRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]voice.AudioChunk, error) {
	var chunkModels []models.AudioChunkModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sequence ASC").
		Find(&chunkModels).Error; err != nil {
		return nil, err
	}

	chunks := make([]voice.AudioChunk, len(chunkModels))
	for i, model := range chunkModels {
		chunks[i] = *model.ToDomain()
	}
	return chunks, nil
}

// Save persists a chunk record
func (r *GormAudioChunkRepository) Save(ctx context.Context, c *voice.AudioChunk) error {
	model := &models.AudioChunkModel{}
	model.FromDomain(c)
	return r.db.WithContext(ctx).Create(model).Error
}

// DeleteBySession removes all chunk records of a session
func (r *GormAudioChunkRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.AudioChunkModel{}, "session_id = ?", sessionID).Error
}

// Ensure GormAudioChunkRepository implements voice.ChunkRepository
var _ voice.ChunkRepository = (*GormAudioChunkRepository)(nil)
