package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxIssueAttempts bounds the retries after a duplicate document number
const maxIssueAttempts = 3

var (
	// ErrCompanyProfileMissing is returned when issuing before the company profile exists
	ErrCompanyProfileMissing = shared.NewDomainError("COMPANY_PROFILE_MISSING", "Set up the company profile before issuing documents")
	// ErrNumberingConflict is returned when every numbering attempt collided
	ErrNumberingConflict = shared.NewDomainError("NUMBERING_CONFLICT", "Could not allocate a document number, please try again")
)

// Issue assigns the next number to a draft, snapshots customer and company
// and locks it. A duplicate number from a concurrent issuance retries the
// whole transaction on a freshly loaded document.
func (s *DocumentService) Issue(ctx context.Context, tenantID, documentID uuid.UUID, req IssueDocumentRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "Issue")
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	var doc *invoicing.Document
	for attempt := 1; ; attempt++ {
		doc, err = s.issueOnce(ctx, tenantID, documentID, req.IssueDate)
		if err == nil {
			break
		}
		if !errors.Is(err, invoicing.ErrDuplicateDocumentNumber) {
			return nil, err
		}
		if attempt >= maxIssueAttempts {
			logger.L(ctx).Error("Document numbering failed after retries",
				zap.String("document_id", documentID.String()),
				zap.Int("attempts", attempt),
			)
			err = ErrNumberingConflict
			return nil, err
		}
		if s.businessMetrics != nil && doc != nil {
			s.businessMetrics.RecordNumberingRetry(ctx, tenantID, doc.Type)
		}
		logger.L(ctx).Warn("Document number taken, retrying issuance",
			zap.String("document_id", documentID.String()),
			zap.Int("attempt", attempt),
		)
	}

	s.publish(ctx, doc)
	logger.L(ctx).Info("Document issued",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.NumberOrEmpty()),
	)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// IssueDraft issues a draft on issueDate. It lets the recurring engine
// auto-issue generated documents.
func (s *DocumentService) IssueDraft(ctx context.Context, tenantID, documentID uuid.UUID, issueDate time.Time) error {
	_, err := s.Issue(ctx, tenantID, documentID, IssueDocumentRequest{IssueDate: &issueDate})
	return err
}

// issueOnce runs one issuance transaction. On a numbering collision the
// loaded document is still returned so the caller can label metrics.
func (s *DocumentService) issueOnce(ctx context.Context, tenantID, documentID uuid.UUID, requestedDate *time.Time) (*invoicing.Document, error) {
	doc, err := s.docRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != invoicing.DocumentStatusDraft {
		return nil, invoicing.ErrDocumentNotDraft
	}

	profile, err := s.profileRepo.FindForTenant(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrCompanyProfileMissing
	}
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, doc.CustomerID)
	if err != nil {
		return nil, err
	}

	issueDate := s.now()
	switch {
	case requestedDate != nil:
		issueDate = *requestedDate
	case doc.IssueDate != nil:
		issueDate = *doc.IssueDate
	}
	prefix := profile.Prefixes(s.settings.Prefixes).For(doc.Type)
	year := issueDate.Year()
	terms := customer.EffectivePaymentTerms(profile.DefaultPaymentTermsDays)

	err = s.docRepo.IssueWithNextNumber(ctx, doc, prefix, year, func(sequence int64) error {
		return doc.Issue(invoicing.IssueParams{
			Number:           invoicing.FormatDocumentNumber(prefix, year, sequence),
			IssueDate:        issueDate,
			PaymentTermsDays: terms,
			Customer:         customer.Snapshot(profile.DefaultPaymentTermsDays),
			Company:          profile.Snapshot(),
		})
	})
	if err != nil {
		return doc, err
	}
	return doc, nil
}
