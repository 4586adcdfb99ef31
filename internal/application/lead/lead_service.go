package lead

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/shared"
)

// Service handles lead pipeline operations
type Service struct {
	leadRepo   lead.Repository
	outboxRepo shared.OutboxRepository
	logger     *zap.Logger
}

// NewService creates a new lead Service
func NewService(leadRepo lead.Repository, outboxRepo shared.OutboxRepository, logger *zap.Logger) *Service {
	return &Service{
		leadRepo:   leadRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Create creates a new lead
func (s *Service) Create(ctx context.Context, req CreateLeadRequest) (*LeadResponse, error) {
	if req.Email != "" {
		exists, err := s.leadRepo.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A lead with this contact email already exists")
		}
	}

	source := lead.SourceManual
	if req.Source != "" {
		source = lead.Source(req.Source)
	}

	l, err := lead.NewLead(req.CompanyName, source)
	if err != nil {
		return nil, err
	}

	if req.ContactName != "" || req.Email != "" || req.Phone != "" {
		if err := l.SetContact(req.ContactName, req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.DealValue != nil {
		if err := l.SetDealValue(*req.DealValue); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		l.Notes = req.Notes
	}
	if req.OwnerID != nil {
		l.SetOwner(*req.OwnerID)
	}

	if err := s.leadRepo.Save(ctx, l); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, l)

	s.logger.Info("Lead created",
		zap.String("lead_id", l.ID.String()),
		zap.String("company", l.CompanyName),
		zap.String("source", string(l.Source)))

	response := ToLeadResponse(l)
	return &response, nil
}

// GetByID retrieves a lead by ID
func (s *Service) GetByID(ctx context.Context, leadID uuid.UUID) (*LeadResponse, error) {
	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	response := ToLeadResponse(l)
	return &response, nil
}

// List retrieves leads with filtering and pagination
func (s *Service) List(ctx context.Context, filter LeadListFilter) ([]LeadResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Source != "" {
		domainFilter.Filters["source"] = filter.Source
	}

	var (
		leads []lead.Lead
		err   error
	)
	switch {
	case filter.OwnerID != "":
		ownerID, parseErr := uuid.Parse(filter.OwnerID)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_OWNER", "Owner ID must be a UUID")
		}
		leads, err = s.leadRepo.FindByOwner(ctx, ownerID, domainFilter)
	case filter.Active:
		leads, err = s.leadRepo.FindActive(ctx, domainFilter)
	default:
		leads, err = s.leadRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.leadRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToLeadResponses(leads), total, nil
}

// Update updates a lead's details
func (s *Service) Update(ctx context.Context, leadID uuid.UUID, req UpdateLeadRequest) (*LeadResponse, error) {
	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil || req.Notes != nil {
		companyName := l.CompanyName
		notes := l.Notes
		if req.CompanyName != nil {
			companyName = *req.CompanyName
		}
		if req.Notes != nil {
			notes = *req.Notes
		}
		if err := l.Update(companyName, notes); err != nil {
			return nil, err
		}
	}

	if req.ContactName != nil || req.Email != nil || req.Phone != nil {
		contactName := l.ContactName
		email := l.Email
		phone := l.Phone
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Email != nil {
			if *req.Email != "" && *req.Email != l.Email {
				exists, err := s.leadRepo.ExistsByEmail(ctx, *req.Email)
				if err != nil {
					return nil, err
				}
				if exists {
					return nil, shared.NewDomainError("ALREADY_EXISTS", "A lead with this contact email already exists")
				}
			}
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := l.SetContact(contactName, email, phone); err != nil {
			return nil, err
		}
	}

	if req.DealValue != nil {
		if err := l.SetDealValue(*req.DealValue); err != nil {
			return nil, err
		}
	}
	if req.OwnerID != nil {
		l.SetOwner(*req.OwnerID)
	}

	if err := s.leadRepo.Save(ctx, l); err != nil {
		return nil, err
	}

	response := ToLeadResponse(l)
	return &response, nil
}

// Transition moves a lead through the pipeline
func (s *Service) Transition(ctx context.Context, leadID uuid.UUID, req TransitionRequest) (*LeadResponse, error) {
	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	// Same-status transitions are a no-op; nothing to persist
	if l.Status == lead.Status(req.Status) {
		response := ToLeadResponse(l)
		return &response, nil
	}

	if err := l.TransitionTo(lead.Status(req.Status)); err != nil {
		return nil, err
	}

	// Optimistic locking guards against concurrent pipeline moves
	if err := s.leadRepo.SaveWithLock(ctx, l); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, l)

	s.logger.Info("Lead transitioned",
		zap.String("lead_id", l.ID.String()),
		zap.String("status", string(l.Status)))

	response := ToLeadResponse(l)
	return &response, nil
}

// ApplyScore writes an AI-derived score onto a lead
func (s *Service) ApplyScore(ctx context.Context, leadID uuid.UUID, score int, rationale string) error {
	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return err
	}

	if err := l.ApplyScore(score, rationale); err != nil {
		return err
	}

	if err := s.leadRepo.Save(ctx, l); err != nil {
		return err
	}

	s.publishEvents(ctx, l)
	return nil
}

// Delete removes a lead
func (s *Service) Delete(ctx context.Context, leadID uuid.UUID) error {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return err
	}
	return s.leadRepo.Delete(ctx, leadID)
}

// PipelineStats returns lead counts per pipeline status
func (s *Service) PipelineStats(ctx context.Context) (map[lead.Status]int64, error) {
	return s.leadRepo.CountByStatus(ctx)
}

// publishEvents writes pending domain events to the outbox
func (s *Service) publishEvents(ctx context.Context, l *lead.Lead) {
	events := l.GetDomainEvents()
	if len(events) == 0 {
		return
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			// Event delivery is retried by the outbox processor; a write
			// failure here only loses the event, so make it loud
			s.logger.Error("Failed to write outbox entries", zap.Error(err))
		}
	}

	l.ClearDomainEvents()
}
