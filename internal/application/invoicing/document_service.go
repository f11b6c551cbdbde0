package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCustomerInactive is returned when a new document names a deactivated customer
var ErrCustomerInactive = shared.NewDomainError("CUSTOMER_INACTIVE", "Customer is inactive")

// Settings are the invoicing defaults that apply when the company profile
// does not override them
type Settings struct {
	Prefixes invoicing.NumberPrefixes
}

// DocumentService handles invoice and credit note operations
type DocumentService struct {
	docRepo         invoicing.DocumentRepository
	customerRepo    partner.CustomerRepository
	profileRepo     partner.CompanyProfileRepository
	expenseRepo     expense.Repository
	settings        Settings
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	docRepo invoicing.DocumentRepository,
	customerRepo partner.CustomerRepository,
	profileRepo partner.CompanyProfileRepository,
	expenseRepo expense.Repository,
	settings Settings,
) *DocumentService {
	return &DocumentService{
		docRepo:      docRepo,
		customerRepo: customerRepo,
		profileRepo:  profileRepo,
		expenseRepo:  expenseRepo,
		settings:     settings,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *DocumentService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates a draft document
func (s *DocumentService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	if err := s.ensureActiveCustomer(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	inputs := make([]invoicing.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		inputs[i] = line.toInput()
	}

	doc, err := invoicing.NewDocument(tenantID, userID, invoicing.DocumentType(req.Type), req.CustomerID, currency, inputs)
	if err != nil {
		return nil, err
	}
	doc.Notes = strings.TrimSpace(req.Notes)
	doc.IssueDate = req.IssueDate

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publish(ctx, doc)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByID retrieves a document with its lines
func (s *DocumentService) GetByID(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// List retrieves a page of documents and the total match count
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) ([]DocumentListResponse, int64, error) {
	domainFilter := invoicing.DocumentFilter{
		Filter:   shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	if filter.Type != "" {
		docType := invoicing.DocumentType(filter.Type)
		domainFilter.Type = &docType
	}
	if filter.Status != "" {
		status := invoicing.DocumentStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_CUSTOMER", "Invalid customer ID")
		}
		domainFilter.CustomerID = &customerID
	}

	docs, total, err := s.docRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToDocumentListResponses(docs, s.now()), total, nil
}

// Update replaces header and lines of a draft. Expense lines survive only
// when the client sends them back with their expense ID.
func (s *DocumentService) Update(ctx context.Context, tenantID, documentID uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.CanEdit() {
		return nil, invoicing.ErrDocumentLocked
	}
	if req.CustomerID != doc.CustomerID {
		if err := s.ensureActiveCustomer(ctx, tenantID, req.CustomerID); err != nil {
			return nil, err
		}
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	billed := make(map[uuid.UUID]bool)
	for _, id := range doc.ExpenseIDs() {
		billed[id] = true
	}
	inputs := make([]invoicing.LineInput, len(req.Lines))
	kept := make(map[uuid.UUID]bool)
	for i, line := range req.Lines {
		inputs[i] = line.toInput()
		if line.ExpenseID != nil && billed[*line.ExpenseID] && !kept[*line.ExpenseID] {
			id := *line.ExpenseID
			inputs[i].ExpenseID = &id
			kept[id] = true
		}
	}

	if err := doc.Revise(req.CustomerID, currency, req.Notes, req.IssueDate, inputs); err != nil {
		return nil, err
	}

	if err := s.docRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	if len(kept) < len(billed) {
		s.releaseExpenses(ctx, doc.TenantID, doc.ID, mapKeys(kept))
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Delete hard deletes an unlocked draft and returns its expenses to approved
func (s *DocumentService) Delete(ctx context.Context, tenantID, documentID uuid.UUID) error {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	if err := doc.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.docRepo.DeleteForTenant(ctx, tenantID, documentID); err != nil {
		return err
	}

	if len(doc.ExpenseIDs()) > 0 {
		s.releaseExpenses(ctx, tenantID, documentID, nil)
	}
	return nil
}

// MarkPaid records the payment of an issued document
func (s *DocumentService) MarkPaid(ctx context.Context, tenantID, documentID uuid.UUID, req MarkPaidRequest) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	paidDate := s.now()
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}
	if err := doc.MarkPaid(paidDate); err != nil {
		return nil, err
	}

	if err := s.docRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}
	s.publish(ctx, doc)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Cancel cancels a draft or issued document
func (s *DocumentService) Cancel(ctx context.Context, tenantID, documentID uuid.UUID, req CancelDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	wasDraft := doc.Status == invoicing.DocumentStatusDraft
	if err := doc.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.docRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}
	s.publish(ctx, doc)

	// A cancelled draft never billed anything
	if wasDraft && len(doc.ExpenseIDs()) > 0 {
		s.releaseExpenses(ctx, tenantID, documentID, nil)
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// CreateCreditNote creates a draft credit note reversing an issued or paid invoice
func (s *DocumentService) CreateCreditNote(ctx context.Context, tenantID, userID, invoiceID uuid.UUID) (*DocumentResponse, error) {
	invoice, err := s.docRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	creditNote, err := invoicing.NewCreditNoteFor(invoice, userID)
	if err != nil {
		return nil, err
	}

	if err := s.docRepo.Save(ctx, creditNote); err != nil {
		return nil, err
	}
	s.publish(ctx, creditNote)

	response := ToDocumentResponse(creditNote)
	return &response, nil
}

func (s *DocumentService) ensureActiveCustomer(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if !customer.IsActive {
		return ErrCustomerInactive
	}
	return nil
}

// releaseExpenses makes expenses that left a draft billable again. Like the
// marking on inclusion it is best-effort and only logged on failure.
func (s *DocumentService) releaseExpenses(ctx context.Context, tenantID, documentID uuid.UUID, keep []uuid.UUID) {
	if s.expenseRepo == nil {
		return
	}
	released, err := s.expenseRepo.ReleaseFromDocument(ctx, tenantID, documentID, keep)
	if err != nil {
		logger.L(ctx).Error("Failed to release expenses from document",
			zap.String("document_id", documentID.String()),
			zap.Error(err),
		)
		return
	}
	logger.L(ctx).Info("Released expenses from document",
		zap.String("document_id", documentID.String()),
		zap.Int64("released", released),
	)
}

func mapKeys(m map[uuid.UUID]bool) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (s *DocumentService) publish(ctx context.Context, doc *invoicing.Document) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, doc); err != nil {
		logger.L(ctx).Warn("Failed to publish document events",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}
}
