package invoicing

import (
	"context"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCurrencyMismatch is returned when an expense is in another currency than the document
var ErrCurrencyMismatch = shared.NewDomainError("CURRENCY_MISMATCH", "Expenses must be in the document currency")

// CreateFromExpenses bills approved expenses on a new invoice draft
func (s *DocumentService) CreateFromExpenses(ctx context.Context, tenantID, userID uuid.UUID, req CreateFromExpensesRequest) (*DocumentResponse, error) {
	if err := s.ensureActiveCustomer(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	selected, err := s.selectExpenses(ctx, tenantID, req.ExpenseIDs, currency)
	if err != nil {
		return nil, err
	}

	doc, err := invoicing.NewDocument(tenantID, userID, invoicing.DocumentTypeInvoice, req.CustomerID, currency, expense.ToLineInputs(selected))
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publish(ctx, doc)
	s.markExported(ctx, tenantID, doc.ID, selected)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// AddExpenses appends approved expenses as lines to an existing draft
func (s *DocumentService) AddExpenses(ctx context.Context, tenantID, documentID uuid.UUID, req AddExpensesRequest) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Type != invoicing.DocumentTypeInvoice {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Expenses can only be billed on invoices")
	}
	if !doc.CanEdit() {
		return nil, invoicing.ErrDocumentLocked
	}
	selected, err := s.selectExpenses(ctx, tenantID, req.ExpenseIDs, doc.Currency)
	if err != nil {
		return nil, err
	}

	if err := doc.AppendLines(expense.ToLineInputs(selected)); err != nil {
		return nil, err
	}
	if err := s.docRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}
	s.markExported(ctx, tenantID, doc.ID, selected)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// selectExpenses fetches the requested expenses and accepts them only as a
// whole. Nothing has been written when it fails.
func (s *DocumentService) selectExpenses(ctx context.Context, tenantID uuid.UUID, requested []uuid.UUID, currency valueobject.Currency) ([]expense.Expense, error) {
	ids := expense.UniqueIDs(requested)
	if len(ids) == 0 {
		return nil, expense.ErrNoExpensesSelected
	}
	fetched, err := s.expenseRepo.FindBillableByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	selected, err := expense.SelectForInclusion(ids, fetched)
	if err != nil {
		return nil, err
	}
	for i := range selected {
		if selected[i].Currency != currency {
			return nil, ErrCurrencyMismatch
		}
	}
	return selected, nil
}

// markExported flags the billed expenses. The document is already saved, so
// a failure here is logged for manual repair instead of rolled back.
func (s *DocumentService) markExported(ctx context.Context, tenantID, documentID uuid.UUID, selected []expense.Expense) {
	ids := make([]uuid.UUID, len(selected))
	expenseIDs := make([]string, len(selected))
	for i := range selected {
		ids[i] = selected[i].ID
		expenseIDs[i] = selected[i].ID.String()
	}

	marked, err := s.expenseRepo.MarkExported(ctx, tenantID, ids, documentID, s.now())
	if err != nil {
		logger.L(ctx).Error("Failed to mark expenses as exported",
			zap.String("document_id", documentID.String()),
			zap.Strings("expense_ids", expenseIDs),
			zap.Error(err),
		)
		return
	}
	if marked != int64(len(ids)) {
		logger.L(ctx).Error("Not all expenses were marked as exported",
			zap.String("document_id", documentID.String()),
			zap.Strings("expense_ids", expenseIDs),
			zap.Int64("marked", marked),
		)
	}
}
