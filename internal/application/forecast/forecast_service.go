package forecast

import (
	"context"
	"time"

	"github.com/botforce/unity/internal/domain/forecast"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ForecastService projects weekly cash flow from outstanding invoices and
// recurring costs, and manages the recurring costs
type ForecastService struct {
	costRepo     forecast.RecurringCostRepository
	docRepo      invoicing.DocumentRepository
	defaultWeeks int
	now          func() time.Time
}

// NewForecastService creates a new ForecastService
func NewForecastService(costRepo forecast.RecurringCostRepository, docRepo invoicing.DocumentRepository) *ForecastService {
	return &ForecastService{
		costRepo:     costRepo,
		docRepo:      docRepo,
		defaultWeeks: forecast.DefaultWeeks,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetDefaultWeeks sets the horizon used when a request names none
func (s *ForecastService) SetDefaultWeeks(weeks int) {
	if weeks >= 1 && weeks <= forecast.MaxWeeks {
		s.defaultWeeks = weeks
	}
}

// Project builds the weekly projection. It reads only and is deterministic
// for a given start date.
func (s *ForecastService) Project(ctx context.Context, tenantID uuid.UUID, req ProjectionRequest) (*forecast.Projection, error) {
	start := s.now()
	if req.Start != nil {
		start = *req.Start
	}
	weeks := req.Weeks
	if weeks == 0 {
		weeks = s.defaultWeeks
	}

	invoices, err := s.docRepo.FindOutstandingInvoices(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	costs, err := s.costRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	receivables := make([]forecast.Receivable, 0, len(invoices))
	for i := range invoices {
		doc := &invoices[i]
		receivables = append(receivables, forecast.Receivable{
			DocumentID:     doc.ID,
			DocumentNumber: doc.NumberOrEmpty(),
			DueDate:        doc.DueDate,
			Amount:         doc.Total,
		})
	}

	projection, err := forecast.Project(forecast.Input{
		Start:           start,
		Weeks:           weeks,
		StartingBalance: req.StartingBalance,
		Receivables:     receivables,
		Costs:           costs,
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Debug("Cash-flow forecast projected",
		zap.Int("weeks", len(projection.Weeks)),
		zap.Int("receivables", len(receivables)),
		zap.Int("costs", len(costs)),
	)
	return projection, nil
}

// CreateCost creates an active recurring cost
func (s *ForecastService) CreateCost(ctx context.Context, tenantID, userID uuid.UUID, req RecurringCostRequest) (*RecurringCostResponse, error) {
	cost, err := forecast.NewRecurringCost(tenantID, userID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.costRepo.Save(ctx, cost); err != nil {
		return nil, err
	}
	response := ToRecurringCostResponse(cost)
	return &response, nil
}

// GetCost retrieves a recurring cost
func (s *ForecastService) GetCost(ctx context.Context, tenantID, costID uuid.UUID) (*RecurringCostResponse, error) {
	cost, err := s.costRepo.FindByIDForTenant(ctx, tenantID, costID)
	if err != nil {
		return nil, err
	}
	response := ToRecurringCostResponse(cost)
	return &response, nil
}

// ListCosts retrieves a page of recurring costs and the total match count
func (s *ForecastService) ListCosts(ctx context.Context, tenantID uuid.UUID, filter RecurringCostListFilter) ([]RecurringCostResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)

	costs, total, err := s.costRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToRecurringCostResponses(costs), total, nil
}

// UpdateCost replaces a recurring cost's fields
func (s *ForecastService) UpdateCost(ctx context.Context, tenantID, costID uuid.UUID, req RecurringCostRequest) (*RecurringCostResponse, error) {
	cost, err := s.costRepo.FindByIDForTenant(ctx, tenantID, costID)
	if err != nil {
		return nil, err
	}
	if err := cost.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.costRepo.SaveWithLock(ctx, cost); err != nil {
		return nil, err
	}
	response := ToRecurringCostResponse(cost)
	return &response, nil
}

// SetCostActive includes or excludes a cost from projections
func (s *ForecastService) SetCostActive(ctx context.Context, tenantID, costID uuid.UUID, active bool) (*RecurringCostResponse, error) {
	cost, err := s.costRepo.FindByIDForTenant(ctx, tenantID, costID)
	if err != nil {
		return nil, err
	}
	if cost.IsActive != active {
		cost.SetActive(active)
		if err := s.costRepo.SaveWithLock(ctx, cost); err != nil {
			return nil, err
		}
	}
	response := ToRecurringCostResponse(cost)
	return &response, nil
}

// DeleteCost deletes a recurring cost
func (s *ForecastService) DeleteCost(ctx context.Context, tenantID, costID uuid.UUID) error {
	if _, err := s.costRepo.FindByIDForTenant(ctx, tenantID, costID); err != nil {
		return err
	}
	return s.costRepo.DeleteForTenant(ctx, tenantID, costID)
}
