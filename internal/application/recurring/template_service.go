package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/recurring"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTickLockTTL is how long a claimed period stays locked when not configured
const DefaultTickLockTTL = 36 * time.Hour

// ErrCustomerInactive is returned when a template bills a deactivated customer
var ErrCustomerInactive = shared.NewDomainError("CUSTOMER_INACTIVE", "Customer is inactive")

// DocumentIssuer issues a generated draft for templates with auto issue
type DocumentIssuer interface {
	IssueDraft(ctx context.Context, tenantID, documentID uuid.UUID, issueDate time.Time) error
}

// TemplateService manages recurring invoice templates and generates their documents
type TemplateService struct {
	templateRepo    recurring.TemplateRepository
	docRepo         invoicing.DocumentRepository
	customerRepo    partner.CustomerRepository
	issuer          DocumentIssuer
	idempotency     shared.IdempotencyStore
	lockTTL         time.Duration
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(
	templateRepo recurring.TemplateRepository,
	docRepo invoicing.DocumentRepository,
	customerRepo partner.CustomerRepository,
	issuer DocumentIssuer,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		docRepo:      docRepo,
		customerRepo: customerRepo,
		issuer:       issuer,
		lockTTL:      DefaultTickLockTTL,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetIdempotencyStore guards ticks against a second replica generating the same period
func (s *TemplateService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TemplateService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *TemplateService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates an active template
func (s *TemplateService) Create(ctx context.Context, tenantID, userID uuid.UUID, req TemplateRequest) (*TemplateResponse, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	if err := s.ensureActiveCustomer(ctx, tenantID, details.CustomerID); err != nil {
		return nil, err
	}
	template, err := recurring.NewTemplate(tenantID, userID, details)
	if err != nil {
		return nil, err
	}
	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}
	response := ToTemplateResponse(template)
	return &response, nil
}

// GetByID retrieves a template with its lines
func (s *TemplateService) GetByID(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	response := ToTemplateResponse(template)
	return &response, nil
}

// List retrieves a page of templates and the total match count
func (s *TemplateService) List(ctx context.Context, tenantID uuid.UUID, filter TemplateListFilter) ([]TemplateResponse, int64, error) {
	domainFilter := recurring.TemplateFilter{
		Filter:   shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		IsActive: filter.IsActive,
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_CUSTOMER", "Invalid customer ID")
		}
		domainFilter.CustomerID = &customerID
	}

	templates, total, err := s.templateRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToTemplateResponses(templates), total, nil
}

// Update replaces a template. The start date re-anchors the next issue date.
func (s *TemplateService) Update(ctx context.Context, tenantID, templateID uuid.UUID, req TemplateRequest) (*TemplateResponse, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	if details.CustomerID != template.CustomerID {
		if err := s.ensureActiveCustomer(ctx, tenantID, details.CustomerID); err != nil {
			return nil, err
		}
	}
	if err := template.Update(details); err != nil {
		return nil, err
	}
	if err := s.templateRepo.SaveWithLock(ctx, template); err != nil {
		return nil, err
	}
	response := ToTemplateResponse(template)
	return &response, nil
}

// Activate resumes generation
func (s *TemplateService) Activate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	return s.setActive(ctx, tenantID, templateID, true)
}

// Deactivate pauses generation
func (s *TemplateService) Deactivate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	return s.setActive(ctx, tenantID, templateID, false)
}

func (s *TemplateService) setActive(ctx context.Context, tenantID, templateID uuid.UUID, active bool) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	if template.IsActive != active {
		if active {
			template.Activate()
		} else {
			template.Deactivate()
		}
		if err := s.templateRepo.SaveWithLock(ctx, template); err != nil {
			return nil, err
		}
	}
	response := ToTemplateResponse(template)
	return &response, nil
}

// Delete deletes a template. Documents generated from it are kept.
func (s *TemplateService) Delete(ctx context.Context, tenantID, templateID uuid.UUID) error {
	if _, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID); err != nil {
		return err
	}
	return s.templateRepo.DeleteForTenant(ctx, tenantID, templateID)
}

// Tick generates the current period's document for one template now
func (s *TemplateService) Tick(ctx context.Context, tenantID, userID, templateID uuid.UUID) (*TickResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	result, err := s.generate(ctx, template, userID, s.now())
	if err != nil {
		return nil, err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordRecurringGenerated(ctx, tenantID, 1)
	}
	return result, nil
}

// TickDue generates one document for every due template of a tenant. A
// failing template is logged and skipped; the error is returned only when
// nothing could be generated.
func (s *TemplateService) TickDue(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "TemplateService", "TickDue")
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	templates, err := s.templateRepo.FindDue(ctx, tenantID, today)
	if err != nil {
		return 0, err
	}

	generated, failed := 0, 0
	var firstErr error
	for i := range templates {
		template := &templates[i]
		createdBy := uuid.Nil
		if template.CreatedBy != nil {
			createdBy = *template.CreatedBy
		}

		_, genErr := s.generate(ctx, template, createdBy, today)
		switch {
		case genErr == nil:
			generated++
		case errors.Is(genErr, recurring.ErrPeriodInProgress), errors.Is(genErr, recurring.ErrTemplateNotDue):
			logger.L(ctx).Debug("Skipping recurring template",
				zap.String("template_id", template.ID.String()),
				zap.String("reason", genErr.Error()),
			)
		default:
			failed++
			if firstErr == nil {
				firstErr = genErr
			}
			logger.L(ctx).Error("Recurring template failed",
				zap.String("template_id", template.ID.String()),
				zap.Error(genErr),
			)
		}
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordRecurringGenerated(ctx, tenantID, generated)
	}
	if generated == 0 && failed > 0 {
		err = fmt.Errorf("%d of %d due templates failed: %w", failed, len(templates), firstErr)
		return 0, err
	}
	return generated, nil
}

// generate stores the period's draft, advances the template and optionally
// issues the draft. The period key is claimed first so that only one caller
// generates a given period.
func (s *TemplateService) generate(ctx context.Context, template *recurring.Template, createdBy uuid.UUID, today time.Time) (*TickResponse, error) {
	if !template.IsDue(today) {
		return nil, recurring.ErrTemplateNotDue
	}
	if err := s.ensureActiveCustomer(ctx, template.TenantID, template.CustomerID); err != nil {
		return nil, err
	}

	key := "recurring:" + template.PeriodKey()
	if s.idempotency != nil {
		claimed, err := s.idempotency.MarkProcessed(ctx, key, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("claim recurring period: %w", err)
		}
		if !claimed {
			return nil, recurring.ErrPeriodInProgress
		}
	}

	doc, err := template.Generate(createdBy, today)
	if err != nil {
		s.release(ctx, key)
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		s.release(ctx, key)
		return nil, err
	}

	template.Advance(s.now())
	if err := s.templateRepo.SaveWithLock(ctx, template); err != nil {
		// Without the advance the next tick would bill the period again
		if delErr := s.docRepo.DeleteForTenant(ctx, doc.TenantID, doc.ID); delErr != nil {
			logger.L(ctx).Error("Failed to remove document of unadvanced template",
				zap.String("template_id", template.ID.String()),
				zap.String("document_id", doc.ID.String()),
				zap.Error(delErr),
			)
		}
		s.release(ctx, key)
		return nil, err
	}

	if err := shared.PublishAndClear(ctx, s.eventPublisher, doc); err != nil {
		logger.L(ctx).Warn("Failed to publish document events",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}

	result := &TickResponse{
		TemplateID:    template.ID,
		DocumentID:    doc.ID,
		NextIssueDate: template.NextIssueDate,
	}
	if template.AutoIssue && s.issuer != nil {
		if err := s.issuer.IssueDraft(ctx, doc.TenantID, doc.ID, today); err != nil {
			logger.L(ctx).Error("Auto issue of recurring draft failed",
				zap.String("template_id", template.ID.String()),
				zap.String("document_id", doc.ID.String()),
				zap.Error(err),
			)
		} else {
			result.Issued = true
		}
	}

	logger.L(ctx).Info("Recurring document generated",
		zap.String("template_id", template.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.Time("next_issue_date", template.NextIssueDate),
		zap.Bool("issued", result.Issued),
	)
	return result, nil
}

func (s *TemplateService) release(ctx context.Context, key string) {
	if s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, key); err != nil {
		logger.L(ctx).Warn("Failed to release recurring period claim",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *TemplateService) ensureActiveCustomer(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if !customer.IsActive {
		return ErrCustomerInactive
	}
	return nil
}
