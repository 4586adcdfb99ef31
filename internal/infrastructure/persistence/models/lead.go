package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nia/backend/internal/domain/lead"
)

// LeadModel is the persistence model for the Lead aggregate.
type LeadModel struct {
	AggregateModel
	CompanyName    string          `gorm:"type:varchar(200);not null"`
	ContactName    string          `gorm:"type:varchar(100)"`
	Email          string          `gorm:"type:varchar(200);index"`
	Phone          string          `gorm:"type:varchar(50);index"`
	Source         lead.Source     `gorm:"type:varchar(20);not null;default:'manual'"`
	Status         lead.Status     `gorm:"type:varchar(20);not null;default:'new';index"`
	Score          int             `gorm:"not null;default:0"`
	ScoreRationale string          `gorm:"type:text"`
	DealValue      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes          string          `gorm:"type:text"`
	OwnerID        *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead
func (m *LeadModel) ToDomain() *lead.Lead {
	l := &lead.Lead{
		CompanyName:    m.CompanyName,
		ContactName:    m.ContactName,
		Email:          m.Email,
		Phone:          m.Phone,
		Source:         m.Source,
		Status:         m.Status,
		Score:          m.Score,
		ScoreRationale: m.ScoreRationale,
		DealValue:      m.DealValue,
		Notes:          m.Notes,
		OwnerID:        m.OwnerID,
	}
	m.PopulateAggregateRoot(&l.BaseAggregateRoot)
	return l
}

// FromDomain populates the persistence model from a domain Lead
func (m *LeadModel) FromDomain(l *lead.Lead) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.CompanyName = l.CompanyName
	m.ContactName = l.ContactName
	m.Email = l.Email
	m.Phone = l.Phone
	m.Source = l.Source
	m.Status = l.Status
	m.Score = l.Score
	m.ScoreRationale = l.ScoreRationale
	m.DealValue = l.DealValue
	m.Notes = l.Notes
	m.OwnerID = l.OwnerID
}
