package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/persistence/models"
	"github.com/botforce/unity/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByIDForTenant loads a document with its lines
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Document, error) {
	var model models.DocumentModel
	err := tenant.ForTenant(ctx, r.db, tenantID).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant lists documents without lines
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.DocumentFilter) ([]invoicing.Document, int64, error) {
	var total int64
	if err := r.filtered(ctx, tenantID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docModels []models.DocumentModel
	query := applyPaging(r.filtered(ctx, tenantID, filter), filter.Filter, DocumentSortFields, "created_at")
	if err := query.Find(&docModels).Error; err != nil {
		return nil, 0, err
	}

	docs, err := documentsToDomain(docModels)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// FindOutstandingInvoices returns issued, unpaid invoices
func (r *GormDocumentRepository) FindOutstandingInvoices(ctx context.Context, tenantID uuid.UUID) ([]invoicing.Document, error) {
	var docModels []models.DocumentModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).
		Where("type = ? AND status = ?", invoicing.DocumentTypeInvoice, invoicing.DocumentStatusIssued).
		Order("due_date ASC").
		Find(&docModels).Error; err != nil {
		return nil, err
	}
	return documentsToDomain(docModels)
}

// FindNumberedInPeriod returns non-draft documents issued in [from, to]
func (r *GormDocumentRepository) FindNumberedInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]invoicing.Document, error) {
	var docModels []models.DocumentModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).
		Where("status <> ? AND issue_date >= ? AND issue_date <= ?", invoicing.DocumentStatusDraft, from, to).
		Order("issue_date ASC, document_number ASC").
		Find(&docModels).Error; err != nil {
		return nil, err
	}
	return documentsToDomain(docModels)
}

// CountForCustomer counts documents referencing a customer
func (r *GormDocumentRepository) CountForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := tenant.ForTenant(ctx, r.db, tenantID).
		Model(&models.DocumentModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a document, replacing its lines
func (r *GormDocumentRepository) Save(ctx context.Context, doc *invoicing.Document) error {
	model, err := models.DocumentModelFromDomain(doc)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := model.Lines
		model.Lines = nil
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return translateDocumentError(err)
		}
		return replaceDocumentLines(tx, model.ID, lines)
	})
}

// SaveWithLock saves a document with optimistic locking (version check)
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *invoicing.Document) error {
	model, err := models.DocumentModelFromDomain(doc)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveDocumentWithLock(tx, model, doc.Version-1)
	})
}

// IssueWithNextNumber draws the next sequence value from the counter row and
// saves the issued document in the same transaction. The row lock taken by
// the counter update serializes concurrent issuance for the same type and year.
func (r *GormDocumentRepository) IssueWithNextNumber(ctx context.Context, doc *invoicing.Document, prefix string, year int, issue invoicing.IssueFunc) error {
	expectedVersion := doc.Version
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, doc.TenantID, doc.Type, prefix, year)
		if err != nil {
			return err
		}
		if err := issue(seq); err != nil {
			return err
		}
		model, err := models.DocumentModelFromDomain(doc)
		if err != nil {
			return err
		}
		return saveDocumentWithLock(tx, model, expectedVersion)
	})
}

// DeleteForTenant deletes a document and its lines
func (r *GormDocumentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(tenant.Scope(tenantID)).Delete(&models.DocumentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&models.DocumentLineModel{}, "document_id = ?", id).Error
	})
}

// filtered builds a fresh query with all non-paging filter conditions
func (r *GormDocumentRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter invoicing.DocumentFilter) *gorm.DB {
	query := tenant.ForTenant(ctx, r.db, tenantID).Model(&models.DocumentModel{})
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.FromDate != nil {
		query = query.Where("issue_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("issue_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(document_number) LIKE ?", containsPattern(filter.Search))
	}
	return query
}

func saveDocumentWithLock(tx *gorm.DB, model *models.DocumentModel, expectedVersion int) error {
	lines := model.Lines
	model.Lines = nil
	result := tx.Model(&models.DocumentModel{}).
		Select("*").
		Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
		Where("id = ? AND tenant_id = ? AND version = ?", model.ID, model.TenantID, expectedVersion).
		Updates(model)
	if result.Error != nil {
		return translateDocumentError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return replaceDocumentLines(tx, model.ID, lines)
}

func replaceDocumentLines(tx *gorm.DB, documentID uuid.UUID, lines []models.DocumentLineModel) error {
	if err := tx.Where("document_id = ?", documentID).Delete(&models.DocumentLineModel{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return tx.Create(&lines).Error
}

// nextSequence seeds the counter row on first use with the number of documents
// already numbered under this prefix and year, then increments it atomically.
func nextSequence(tx *gorm.DB, tenantID uuid.UUID, docType invoicing.DocumentType, prefix string, year int) (int64, error) {
	now := time.Now().UTC()
	seed := tx.Exec(`INSERT INTO document_sequences (tenant_id, document_type, year, last_value, updated_at)
VALUES (?, ?, ?, (SELECT COUNT(*) FROM documents WHERE tenant_id = ? AND type = ? AND document_number LIKE ?), ?)
ON CONFLICT (tenant_id, document_type, year) DO NOTHING`,
		tenantID, docType, year,
		tenantID, docType, invoicing.NumberPattern(prefix, year),
		now)
	if seed.Error != nil {
		return 0, fmt.Errorf("seed document sequence: %w", seed.Error)
	}

	var seq int64
	err := tx.Raw(`UPDATE document_sequences SET last_value = last_value + 1, updated_at = ?
WHERE tenant_id = ? AND document_type = ? AND year = ?
RETURNING last_value`, now, tenantID, docType, year).Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("increment document sequence: %w", err)
	}
	if seq == 0 {
		return 0, fmt.Errorf("increment document sequence: no counter row for %s/%d", docType, year)
	}
	return seq, nil
}

func translateDocumentError(err error) error {
	if IsDuplicateKey(err) {
		return invoicing.ErrDuplicateDocumentNumber
	}
	return err
}

func documentsToDomain(docModels []models.DocumentModel) ([]invoicing.Document, error) {
	docs := make([]invoicing.Document, 0, len(docModels))
	for i := range docModels {
		doc, err := docModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ invoicing.DocumentRepository = (*GormDocumentRepository)(nil)
