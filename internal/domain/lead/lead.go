package lead

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the pipeline status of a lead
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// Source represents where a lead came from
type Source string

const (
	SourceManual       Source = "manual"
	SourceConversation Source = "conversation"
	SourceVoiceCall    Source = "voice_call"
	SourceImport       Source = "import"
)

// validTransitions maps each status to the statuses it may move to.
// Terminal statuses (converted, lost) have no outgoing transitions.
var validTransitions = map[Status][]Status{
	StatusNew:       {StatusContacted, StatusQualified, StatusLost},
	StatusContacted: {StatusQualified, StatusConverted, StatusLost},
	StatusQualified: {StatusConverted, StatusLost},
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Lead represents a prospective customer with AI-derived scoring.
// It is the aggregate root for lead-related operations.
type Lead struct {
	shared.BaseAggregateRoot
	CompanyName    string
	ContactName    string
	Email          string
	Phone          string
	Source         Source
	Status         Status
	Score          int // AI-derived, 0-100
	ScoreRationale string
	DealValue      decimal.Decimal // Estimated
	Notes          string
	OwnerID        *uuid.UUID // Assigned sales rep
}

// TableName returns the table name for GORM
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a new lead with required fields
func NewLead(companyName string, source Source) (*Lead, error) {
	if err := validateCompanyName(companyName); err != nil {
		return nil, err
	}
	if err := validateSource(source); err != nil {
		return nil, err
	}

	l := &Lead{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyName:       companyName,
		Source:            source,
		Status:            StatusNew,
		DealValue:         decimal.Zero,
	}

	l.AddDomainEvent(NewLeadCreatedEvent(l))

	return l, nil
}

// Update updates the lead's basic information
func (l *Lead) Update(companyName, notes string) error {
	if err := validateCompanyName(companyName); err != nil {
		return err
	}
	l.CompanyName = companyName
	l.Notes = notes
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// SetContact sets the contact fields after validation
func (l *Lead) SetContact(contactName, email, phone string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	if phone != "" && !ValidPhone(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone format is invalid")
	}
	l.ContactName = contactName
	l.Email = strings.ToLower(email)
	l.Phone = phone
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// SetDealValue sets the estimated deal value
func (l *Lead) SetDealValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_DEAL_VALUE", "Deal value cannot be negative")
	}
	l.DealValue = value
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// SetOwner assigns the lead to a sales rep
func (l *Lead) SetOwner(ownerID uuid.UUID) {
	l.OwnerID = &ownerID
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

// ApplyScore records an AI-derived score with its rationale.
// Scores outside 0-100 are rejected.
func (l *Lead) ApplyScore(score int, rationale string) error {
	if score < 0 || score > 100 {
		return shared.NewDomainError("INVALID_SCORE", "Score must be between 0 and 100")
	}
	l.Score = score
	l.ScoreRationale = rationale
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	l.AddDomainEvent(NewLeadScoredEvent(l))
	return nil
}

// TransitionTo moves the lead to a new pipeline status.
// Only transitions defined in the pipeline are allowed.
func (l *Lead) TransitionTo(next Status) error {
	if err := validateStatus(next); err != nil {
		return err
	}
	if l.Status == next {
		return nil
	}
	for _, allowed := range validTransitions[l.Status] {
		if allowed == next {
			prev := l.Status
			l.Status = next
			l.UpdatedAt = time.Now()
			l.IncrementVersion()
			l.AddDomainEvent(NewLeadStatusChangedEvent(l, prev))
			return nil
		}
	}
	return shared.NewDomainError("INVALID_TRANSITION",
		"Cannot move lead from "+string(l.Status)+" to "+string(next))
}

// IsTerminal returns true if the lead is in a terminal status
func (l *Lead) IsTerminal() bool {
	return l.Status == StatusConverted || l.Status == StatusLost
}

// IsActive returns true if the lead is still in the pipeline
func (l *Lead) IsActive() bool {
	return !l.IsTerminal()
}

// ValidEmail reports whether s looks like an email address
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{5,24}$`)

// ValidPhone reports whether s looks like a phone number
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

func validateCompanyName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}

func validateSource(source Source) error {
	switch source {
	case SourceManual, SourceConversation, SourceVoiceCall, SourceImport:
		return nil
	}
	return shared.NewDomainError("INVALID_SOURCE", "Unknown lead source")
}

func validateStatus(status Status) error {
	switch status {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return nil
	}
	return shared.NewDomainError("INVALID_STATUS", "Unknown lead status")
}
