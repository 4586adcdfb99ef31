package insight

import (
	"time"

	"github.com/google/uuid"

	"github.com/nia/backend/internal/domain/insight"
)

// InsightResponse represents the recommendations for a lead in API responses
type InsightResponse struct {
	LeadID          uuid.UUID                `json:"lead_id"`
	Recommendations []insight.Recommendation `json:"recommendations"`
	Model           string                   `json:"model,omitempty"`
	GeneratedAt     time.Time                `json:"generated_at"`
	Fallback        bool                     `json:"fallback"`
}

// ToInsightResponse converts a domain Insight to an InsightResponse.
// An undecodable payload degrades to the default recommendation set.
func ToInsightResponse(ins *insight.Insight) InsightResponse {
	recs, err := ins.Recommendations()
	if err != nil || len(recs) == 0 {
		recs = insight.DefaultRecommendations()
	}
	return InsightResponse{
		LeadID:          ins.LeadID,
		Recommendations: recs,
		Model:           ins.Model,
		GeneratedAt:     ins.GeneratedAt,
		Fallback:        ins.Fallback,
	}
}
