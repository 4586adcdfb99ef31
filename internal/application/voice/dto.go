package voice

import (
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/voice"
)

// StartSessionRequest starts a call session for a sales rep
type StartSessionRequest struct {
	OwnerID *uuid.UUID `json:"owner_id"` // Defaults to the authenticated user
	LeadID  *uuid.UUID `json:"lead_id"`
}

// UploadChunkRequest carries one audio chunk payload
type UploadChunkRequest struct {
	Sequence    int
	Data        []byte
	ContentType string
}

// EndSessionRequest ends a session, optionally submitting the final
// transcript for conversation analysis
type EndSessionRequest struct {
	Transcript string `json:"transcript"`
}

// SessionListFilter carries pagination and filtering for session listings
type SessionListFilter struct {
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	OwnerID  string `form:"owner_id,omitempty" binding:"omitempty,uuid"`
	Status   string `form:"status,omitempty" binding:"omitempty,oneof=active completed failed"`
}

// SessionResponse represents a call session in API responses
type SessionResponse struct {
	ID         uuid.UUID  `json:"id"`
	LeadID     *uuid.UUID `json:"lead_id,omitempty"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	ChunkCount int        `json:"chunk_count"`
	TotalBytes int64      `json:"total_bytes"`
	AnalysisID *uuid.UUID `json:"analysis_id,omitempty"`
	FailReason string     `json:"fail_reason,omitempty"`
}

// ToSessionResponse converts a domain CallSession to a SessionResponse
func ToSessionResponse(s *voice.CallSession) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		LeadID:     s.LeadID,
		OwnerID:    s.OwnerID,
		Status:     string(s.Status),
		StartedAt:  s.StartedAt,
		EndedAt:    s.EndedAt,
		ChunkCount: s.ChunkCount,
		TotalBytes: s.TotalBytes,
		AnalysisID: s.AnalysisID,
		FailReason: s.FailReason,
	}
}

// ToSessionResponses converts a slice of domain sessions
func ToSessionResponses(sessions []voice.CallSession) []SessionResponse {
	responses := make([]SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = ToSessionResponse(&sessions[i])
	}
	return responses
}

// ChunkResponse represents an accepted chunk in API responses
type ChunkResponse struct {
	SessionID  uuid.UUID `json:"session_id"`
	Sequence   int       `json:"sequence"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"storage_key"`
}
