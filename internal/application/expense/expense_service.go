package expense

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllowedReceiptTypes are the content types accepted for receipt uploads.
// SVG is excluded because it can carry scripts.
var AllowedReceiptTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
	"image/webp":      true,
}

var (
	ErrStorageDisabled         = shared.NewBusinessError("RECEIPT_STORAGE_DISABLED", "Receipt storage is not configured")
	ErrReceiptScanningDisabled = shared.NewBusinessError("RECEIPT_SCANNING_DISABLED", "Receipt scanning is not configured")
)

// ServiceConfig holds the expense service settings
type ServiceConfig struct {
	// MileageRate applies to trips that do not name their own rate
	MileageRate       decimal.Decimal
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultServiceConfig returns the default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MileageRate:       expense.DefaultMileageRate,
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// ExpenseService handles the expense approval workflow and receipts
type ExpenseService struct {
	repo           expense.Repository
	storage        shared.ObjectStorage
	scanner        expense.ReceiptScanner
	config         ServiceConfig
	eventPublisher shared.EventPublisher
}

// NewExpenseService creates a new ExpenseService. storage and scanner may be
// nil when those integrations are disabled.
func NewExpenseService(repo expense.Repository, storage shared.ObjectStorage, scanner expense.ReceiptScanner) *ExpenseService {
	return &ExpenseService{
		repo:    repo,
		storage: storage,
		scanner: scanner,
		config:  DefaultServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *ExpenseService) SetConfig(config ServiceConfig) {
	defaults := DefaultServiceConfig()
	if !config.MileageRate.IsPositive() {
		config.MileageRate = defaults.MileageRate
	}
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = defaults.UploadURLExpiry
	}
	if config.DownloadURLExpiry <= 0 {
		config.DownloadURLExpiry = defaults.DownloadURLExpiry
	}
	s.config = config
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ExpenseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a draft expense from a receipt
func (s *ExpenseService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	if details.Category == expense.CategoryMileage {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Use a trip to record mileage")
	}
	e, err := expense.NewExpense(tenantID, userID, details)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return s.respond(ctx, e), nil
}

// CreateMileage records a draft Kilometergeld claim
func (s *ExpenseService) CreateMileage(ctx context.Context, tenantID, userID uuid.UUID, req MileageRequest) (*ExpenseResponse, error) {
	e, err := expense.NewMileageExpense(tenantID, userID, s.trip(req))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return s.respond(ctx, e), nil
}

// GetByID retrieves an expense with a download URL for its receipt
func (s *ExpenseService) GetByID(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.repo.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	response := s.respond(ctx, e)
	s.enrichWithReceiptURL(ctx, response)
	return response, nil
}

// List retrieves a page of expenses and the total match count
func (s *ExpenseService) List(ctx context.Context, tenantID, userID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := expense.Filter{
		Filter:   shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		Billable: filter.Billable,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	if filter.Status != "" {
		status := expense.Status(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Category != "" {
		category := expense.Category(filter.Category)
		if !category.IsValid() {
			return nil, 0, shared.NewDomainErrorf("INVALID_CATEGORY", "Unsupported category: %s", filter.Category)
		}
		domainFilter.Category = &category
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_CUSTOMER", "Invalid customer ID")
		}
		domainFilter.CustomerID = &customerID
	}
	if filter.Mine {
		domainFilter.CreatedBy = &userID
	}

	expenses, total, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToExpenseResponses(expenses), total, nil
}

// Update replaces a receipt-based draft or rejected expense
func (s *ExpenseService) Update(ctx context.Context, tenantID, expenseID uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, expenseID, func(e *expense.Expense) error {
		if e.IsMileage() {
			return shared.NewDomainError("INVALID_CATEGORY", "Use the mileage endpoint to edit a trip")
		}
		return e.Update(details)
	})
}

// UpdateMileage replaces a draft or rejected mileage claim
func (s *ExpenseService) UpdateMileage(ctx context.Context, tenantID, expenseID uuid.UUID, req MileageRequest) (*ExpenseResponse, error) {
	trip := s.trip(req)
	return s.mutate(ctx, tenantID, expenseID, func(e *expense.Expense) error {
		if !e.IsMileage() {
			return shared.NewDomainError("INVALID_CATEGORY", "Expense is not a mileage claim")
		}
		return e.UpdateTrip(trip)
	})
}

// Submit sends a draft for approval
func (s *ExpenseService) Submit(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	return s.mutate(ctx, tenantID, expenseID, func(e *expense.Expense) error {
		return e.Submit()
	})
}

// Approve approves a submitted expense, making it billable
func (s *ExpenseService) Approve(ctx context.Context, tenantID, userID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	return s.mutate(ctx, tenantID, expenseID, func(e *expense.Expense) error {
		return e.Approve(userID)
	})
}

// Reject rejects a submitted expense with a reason
func (s *ExpenseService) Reject(ctx context.Context, tenantID, userID, expenseID uuid.UUID, req RejectExpenseRequest) (*ExpenseResponse, error) {
	return s.mutate(ctx, tenantID, expenseID, func(e *expense.Expense) error {
		return e.Reject(userID, req.Reason)
	})
}

// Reopen returns a rejected expense to draft
func (s *ExpenseService) Reopen(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	return s.mutate(ctx, tenantID, expenseID, func(e *expense.Expense) error {
		return e.Reopen()
	})
}

// Delete removes a draft expense and its stored receipt
func (s *ExpenseService) Delete(ctx context.Context, tenantID, expenseID uuid.UUID) error {
	e, err := s.repo.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return err
	}
	if err := e.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.repo.DeleteForTenant(ctx, tenantID, expenseID); err != nil {
		return err
	}

	if e.ReceiptKey != "" && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, e.ReceiptKey); err != nil {
			logger.L(ctx).Warn("Failed to delete receipt object",
				zap.String("expense_id", expenseID.String()),
				zap.String("key", e.ReceiptKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// InitiateReceiptUpload returns a presigned URL the client PUTs the receipt to.
// The receipt is attached once the upload is confirmed.
func (s *ExpenseService) InitiateReceiptUpload(ctx context.Context, tenantID, expenseID uuid.UUID, req ReceiptUploadRequest) (*ReceiptUploadResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if !AllowedReceiptTypes[strings.ToLower(req.ContentType)] {
		return nil, shared.NewDomainErrorf("DISALLOWED_CONTENT_TYPE", "Content type '%s' is not allowed for receipts", req.ContentType)
	}
	e, err := s.repo.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	if e.Status == expense.StatusApproved || e.Status == expense.StatusExported {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Cannot change receipt of expense in %s status", e.Status)
	}

	key := ReceiptKey(tenantID, expenseID, req.FileName)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		logger.L(ctx).Error("Failed to generate receipt upload URL",
			zap.String("expense_id", expenseID.String()),
			zap.Error(err),
		)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &ReceiptUploadResponse{Key: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// ConfirmReceipt verifies the uploaded object and attaches it to the expense
func (s *ExpenseService) ConfirmReceipt(ctx context.Context, tenantID, expenseID uuid.UUID, req ConfirmReceiptRequest) (*ExpenseResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if !strings.HasPrefix(req.Key, receiptPrefix(tenantID, expenseID)) {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt key does not belong to this expense")
	}
	exists, err := s.storage.ObjectExists(ctx, req.Key)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first.")
	}

	var previous string
	response, err := s.mutate(ctx, tenantID, expenseID, func(e *expense.Expense) error {
		previous = e.ReceiptKey
		return e.AttachReceipt(req.Key)
	})
	if err != nil {
		return nil, err
	}
	if previous != "" && previous != req.Key {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			logger.L(ctx).Warn("Failed to delete replaced receipt",
				zap.String("expense_id", expenseID.String()),
				zap.String("key", previous),
				zap.Error(err),
			)
		}
	}
	s.enrichWithReceiptURL(ctx, response)
	return response, nil
}

// ScanReceipt reads merchant, date and amounts from a receipt to prefill a draft
func (s *ExpenseService) ScanReceipt(ctx context.Context, content []byte, mimeType string) (*ScannedReceiptResponse, error) {
	if s.scanner == nil {
		return nil, ErrReceiptScanningDisabled
	}
	scanned, err := s.scanner.Scan(ctx, content, mimeType)
	if err != nil {
		return nil, err
	}
	response := ToScannedReceiptResponse(scanned)
	return &response, nil
}

// ReceiptKey builds the object key of a receipt: receipts/{tenant}/{expense}/{unique}{ext}
func ReceiptKey(tenantID, expenseID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s%s%s", receiptPrefix(tenantID, expenseID), uuid.New().String(), ext)
}

func receiptPrefix(tenantID, expenseID uuid.UUID) string {
	return fmt.Sprintf("receipts/%s/%s/", tenantID, expenseID)
}

func (s *ExpenseService) trip(req MileageRequest) expense.Trip {
	rate := s.config.MileageRate
	if req.RatePerKm != nil {
		rate = *req.RatePerKm
	}
	return expense.Trip{
		CustomerID: req.CustomerID,
		Date:       req.Date,
		Route:      req.Route,
		DistanceKm: req.DistanceKm,
		RatePerKm:  rate,
	}
}

// mutate loads an expense, applies fn and saves it with the version check
func (s *ExpenseService) mutate(ctx context.Context, tenantID, expenseID uuid.UUID, fn func(*expense.Expense) error) (*ExpenseResponse, error) {
	e, err := s.repo.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, e); err != nil {
		return nil, err
	}
	return s.respond(ctx, e), nil
}

func (s *ExpenseService) respond(ctx context.Context, e *expense.Expense) *ExpenseResponse {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, e); err != nil {
		logger.L(ctx).Warn("Failed to publish expense events",
			zap.String("expense_id", e.ID.String()),
			zap.Error(err),
		)
	}
	response := ToExpenseResponse(e)
	return &response
}

func (s *ExpenseService) enrichWithReceiptURL(ctx context.Context, response *ExpenseResponse) {
	if response.ReceiptKey == "" || s.storage == nil {
		return
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, response.ReceiptKey, s.config.DownloadURLExpiry)
	if err == nil {
		response.ReceiptURL = url
	}
}
