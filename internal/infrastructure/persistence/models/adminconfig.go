package models

import (
	"github.com/nia/backend/internal/domain/adminconfig"
)

// PromptTemplateModel is the persistence model for the PromptTemplate aggregate.
type PromptTemplateModel struct {
	AggregateModel
	Name   string           `gorm:"type:varchar(100);not null;uniqueIndex"`
	Kind   adminconfig.Kind `gorm:"type:varchar(20);not null;index"`
	Body   string           `gorm:"type:text;not null"`
	Active bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PromptTemplateModel) TableName() string {
	return "prompt_templates"
}

// ToDomain converts the persistence model to a domain PromptTemplate
func (m *PromptTemplateModel) ToDomain() *adminconfig.PromptTemplate {
	t := &adminconfig.PromptTemplate{
		Name:   m.Name,
		Kind:   m.Kind,
		Body:   m.Body,
		Active: m.Active,
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain PromptTemplate
func (m *PromptTemplateModel) FromDomain(t *adminconfig.PromptTemplate) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Kind = t.Kind
	m.Body = t.Body
	m.Active = t.Active
}
