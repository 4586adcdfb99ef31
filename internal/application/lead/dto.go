package lead

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nia/backend/internal/domain/lead"
)

// CreateLeadRequest is the request to create a lead manually
type CreateLeadRequest struct {
	CompanyName string           `json:"company_name" binding:"required,max=200"`
	ContactName string           `json:"contact_name" binding:"omitempty,max=100"`
	Email       string           `json:"email" binding:"omitempty,email"`
	Phone       string           `json:"phone" binding:"omitempty,max=50"`
	Source      string           `json:"source" binding:"omitempty,oneof=manual conversation voice_call import"`
	DealValue   *decimal.Decimal `json:"deal_value"`
	Notes       string           `json:"notes"`
	OwnerID     *uuid.UUID       `json:"owner_id"`
}

// UpdateLeadRequest is the request to update a lead
type UpdateLeadRequest struct {
	CompanyName *string          `json:"company_name" binding:"omitempty,max=200"`
	ContactName *string          `json:"contact_name" binding:"omitempty,max=100"`
	Email       *string          `json:"email" binding:"omitempty,email"`
	Phone       *string          `json:"phone" binding:"omitempty,max=50"`
	DealValue   *decimal.Decimal `json:"deal_value"`
	Notes       *string          `json:"notes"`
	OwnerID     *uuid.UUID       `json:"owner_id"`
}

// TransitionRequest moves a lead to a new pipeline status
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted qualified converted lost"`
}

// LeadListFilter carries pagination and filtering for lead listings
type LeadListFilter struct {
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search,omitempty"`
	Status   string `form:"status,omitempty" binding:"omitempty,oneof=new contacted qualified converted lost"`
	Source   string `form:"source,omitempty" binding:"omitempty,oneof=manual conversation voice_call import"`
	OwnerID  string `form:"owner_id,omitempty" binding:"omitempty,uuid"`
	Active   bool   `form:"active,omitempty"`
}

// LeadResponse is the full view of a lead
type LeadResponse struct {
	ID             uuid.UUID       `json:"id"`
	CompanyName    string          `json:"company_name"`
	ContactName    string          `json:"contact_name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Source         lead.Source     `json:"source"`
	Status         lead.Status     `json:"status"`
	Score          int             `json:"score"`
	ScoreRationale string          `json:"score_rationale,omitempty"`
	DealValue      decimal.Decimal `json:"deal_value"`
	Notes          string          `json:"notes,omitempty"`
	OwnerID        *uuid.UUID      `json:"owner_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToLeadResponse converts a domain Lead to its response view
func ToLeadResponse(l *lead.Lead) LeadResponse {
	return LeadResponse{
		ID:             l.ID,
		CompanyName:    l.CompanyName,
		ContactName:    l.ContactName,
		Email:          l.Email,
		Phone:          l.Phone,
		Source:         l.Source,
		Status:         l.Status,
		Score:          l.Score,
		ScoreRationale: l.ScoreRationale,
		DealValue:      l.DealValue,
		Notes:          l.Notes,
		OwnerID:        l.OwnerID,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// ToLeadResponses converts a slice of domain Leads
func ToLeadResponses(leads []lead.Lead) []LeadResponse {
	responses := make([]LeadResponse, len(leads))
	for i := range leads {
		responses[i] = ToLeadResponse(&leads[i])
	}
	return responses
}
