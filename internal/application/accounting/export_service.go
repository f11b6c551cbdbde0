package accounting

import (
	"bytes"
	"context"
	"time"

	"github.com/botforce/unity/internal/domain/accounting"
	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CSVContentType is the content type of rendered exports
const CSVContentType = "text/csv; charset=utf-8"

// ExportService creates, locks and serves accounting exports
type ExportService struct {
	exportRepo     accounting.ExportRepository
	docRepo        invoicing.DocumentRepository
	expenseRepo    expense.Repository
	storage        shared.ObjectStorage
	urlExpiry      time.Duration
	eventPublisher shared.EventPublisher
}

// NewExportService creates a new ExportService. storage may be nil, in
// which case downloads are rendered from the stored rows.
func NewExportService(
	exportRepo accounting.ExportRepository,
	docRepo invoicing.DocumentRepository,
	expenseRepo expense.Repository,
	storage shared.ObjectStorage,
) *ExportService {
	return &ExportService{
		exportRepo:  exportRepo,
		docRepo:     docRepo,
		expenseRepo: expenseRepo,
		storage:     storage,
		urlExpiry:   time.Hour,
	}
}

// SetDownloadURLExpiry sets how long presigned download URLs stay valid
func (s *ExportService) SetDownloadURLExpiry(expiry time.Duration) {
	if expiry > 0 {
		s.urlExpiry = expiry
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ExportService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create snapshots the period's issued, paid and cancelled documents and
// its approved or exported expenses, archives the CSV and stores the export
func (s *ExportService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateExportRequest) (*ExportResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ExportService", "Create")
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	period := accounting.Period{Start: req.PeriodStart, End: req.PeriodEnd}
	if err = period.Validate(); err != nil {
		return nil, err
	}
	from := shared.TruncateToDay(period.Start)
	to := shared.TruncateToDay(period.End)

	docs, err := s.docRepo.FindNumberedInPeriod(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindForPeriod(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	export, err := accounting.NewExport(tenantID, userID, req.Name, period, docs, expenses)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		var buf bytes.Buffer
		if err = accounting.WriteCSV(&buf, export.Rows); err != nil {
			return nil, err
		}
		key := accounting.FileKey(tenantID, export.ID, export.Name)
		if err = s.storage.Upload(ctx, key, buf.Bytes(), CSVContentType); err != nil {
			return nil, shared.NewExternalServiceError("object storage", err)
		}
		if err = export.AttachFile(key); err != nil {
			return nil, err
		}
	}

	if err = s.exportRepo.Save(ctx, export); err != nil {
		if export.FileKey != "" {
			s.deleteFile(ctx, export.FileKey)
		}
		return nil, err
	}

	if pubErr := shared.PublishAndClear(ctx, s.eventPublisher, export); pubErr != nil {
		logger.L(ctx).Warn("Failed to publish export events",
			zap.String("export_id", export.ID.String()),
			zap.Error(pubErr),
		)
	}

	logger.L(ctx).Info("Accounting export created",
		zap.String("export_id", export.ID.String()),
		zap.Time("period_start", export.PeriodStart),
		zap.Time("period_end", export.PeriodEnd),
		zap.Int("rows", len(export.Rows)),
	)
	response := ToExportResponse(export)
	return &response, nil
}

// GetByID retrieves an export with its rows
func (s *ExportService) GetByID(ctx context.Context, tenantID, exportID uuid.UUID) (*ExportResponse, error) {
	export, err := s.exportRepo.FindByIDForTenant(ctx, tenantID, exportID)
	if err != nil {
		return nil, err
	}
	response := ToExportResponse(export)
	return &response, nil
}

// List retrieves a page of exports without rows
func (s *ExportService) List(ctx context.Context, tenantID uuid.UUID, filter ExportListFilter) ([]ExportResponse, int64, error) {
	domainFilter := shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)

	exports, total, err := s.exportRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToExportResponses(exports), total, nil
}

// Lock freezes an export for the accountant
func (s *ExportService) Lock(ctx context.Context, tenantID, userID, exportID uuid.UUID) (*ExportResponse, error) {
	export, err := s.exportRepo.FindByIDForTenant(ctx, tenantID, exportID)
	if err != nil {
		return nil, err
	}
	if err := export.Lock(userID); err != nil {
		return nil, err
	}
	if err := s.exportRepo.SaveWithLock(ctx, export); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.eventPublisher, export); err != nil {
		logger.L(ctx).Warn("Failed to publish export events",
			zap.String("export_id", export.ID.String()),
			zap.Error(err),
		)
	}
	response := ToExportResponse(export)
	return &response, nil
}

// Delete removes an unlocked export and its archived file
func (s *ExportService) Delete(ctx context.Context, tenantID, exportID uuid.UUID) error {
	export, err := s.exportRepo.FindByIDForTenant(ctx, tenantID, exportID)
	if err != nil {
		return err
	}
	if err := export.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.exportRepo.DeleteForTenant(ctx, tenantID, exportID); err != nil {
		return err
	}
	if export.FileKey != "" {
		s.deleteFile(ctx, export.FileKey)
	}
	return nil
}

// Download returns a presigned URL for the archived CSV, or the CSV
// re-rendered from the snapshot when nothing was archived
func (s *ExportService) Download(ctx context.Context, tenantID, exportID uuid.UUID) (*DownloadResponse, error) {
	export, err := s.exportRepo.FindByIDForTenant(ctx, tenantID, exportID)
	if err != nil {
		return nil, err
	}
	fileName := accounting.Slug(export.Name) + ".csv"

	if s.storage != nil && export.FileKey != "" {
		url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, export.FileKey, s.urlExpiry)
		if err != nil {
			return nil, shared.NewExternalServiceError("object storage", err)
		}
		return &DownloadResponse{URL: url, ExpiresAt: &expiresAt, FileName: fileName}, nil
	}

	var buf bytes.Buffer
	if err := accounting.WriteCSV(&buf, export.Rows); err != nil {
		return nil, err
	}
	return &DownloadResponse{FileName: fileName, Content: buf.Bytes()}, nil
}

func (s *ExportService) deleteFile(ctx context.Context, key string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		logger.L(ctx).Warn("Failed to delete export file",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
