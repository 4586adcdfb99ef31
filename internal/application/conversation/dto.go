package conversation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/conversation"
)

// AnalyzeRequest carries a raw transcript for AI extraction
type AnalyzeRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// AnalysisListFilter carries pagination and filtering for analysis listings
type AnalysisListFilter struct {
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status,omitempty" binding:"omitempty,oneof=pending completed failed"`
	LeadID   string `form:"lead_id,omitempty" binding:"omitempty,uuid"`
}

// AnalysisResponse represents a conversation analysis in API responses.
// Extraction is the decoded structured payload; it is nil until the
// analysis completes.
type AnalysisResponse struct {
	ID           uuid.UUID                `json:"id"`
	LeadID       *uuid.UUID               `json:"lead_id,omitempty"`
	Transcript   string                   `json:"transcript"`
	Extraction   *conversation.Extraction `json:"extraction,omitempty"`
	Status       string                   `json:"status"`
	Fallback     bool                     `json:"fallback"`
	Error        string                   `json:"error,omitempty"`
	Model        string                   `json:"model,omitempty"`
	PromptTokens int                      `json:"prompt_tokens"`
	OutputTokens int                      `json:"output_tokens"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// ToAnalysisResponse converts a domain Analysis to an AnalysisResponse
func ToAnalysisResponse(a *conversation.Analysis) AnalysisResponse {
	resp := AnalysisResponse{
		ID:           a.ID,
		LeadID:       a.LeadID,
		Transcript:   a.Transcript,
		Status:       string(a.Status),
		Fallback:     a.Status == conversation.StatusFailed,
		Error:        a.Error,
		Model:        a.Model,
		PromptTokens: a.PromptTokens,
		OutputTokens: a.OutputTokens,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.ExtractedJSON != "" {
		var extraction conversation.Extraction
		if err := json.Unmarshal([]byte(a.ExtractedJSON), &extraction); err == nil {
			resp.Extraction = &extraction
		}
	}
	return resp
}

// ToAnalysisResponses converts a slice of domain analyses
func ToAnalysisResponses(analyses []conversation.Analysis) []AnalysisResponse {
	responses := make([]AnalysisResponse, len(analyses))
	for i := range analyses {
		responses[i] = ToAnalysisResponse(&analyses[i])
	}
	return responses
}
