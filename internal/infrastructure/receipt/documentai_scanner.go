// Package receipt prefills expense drafts from receipt images and PDFs
// using Google Document AI.
package receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName    = "Receipt scanning"
	defaultTimeout = 60 * time.Second
)

// SupportedMimeTypes are the receipt formats Document AI accepts.
var SupportedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
	"image/webp":      true,
}

// Errors returned before the remote call is made.
var (
	ErrEmptyReceipt    = shared.NewValidationError("Receipt file is empty")
	ErrUnsupportedType = shared.NewValidationError("Receipt must be a PDF, JPEG, PNG, TIFF or WebP file")
)

// processor is the part of the Document AI client the scanner needs.
type processor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error)
	Close() error
}

type clientAdapter struct {
	client *documentai.DocumentProcessorClient
}

func (a clientAdapter) ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
	return a.client.ProcessDocument(ctx, req)
}

func (a clientAdapter) Close() error {
	return a.client.Close()
}

// DocumentAIScanner implements expense.ReceiptScanner with an expense
// (receipt) processor.
type DocumentAIScanner struct {
	client        processor
	processorName string
	maxFileSize   int64
	timeout       time.Duration
	logger        *zap.Logger
}

// NewDocumentAIScanner connects to the regional Document AI endpoint.
func NewDocumentAIScanner(ctx context.Context, cfg config.ReceiptConfig, logger *zap.Logger) (*DocumentAIScanner, error) {
	if cfg.ProjectID == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("receipt scanner: project id and processor id are required")
	}
	location := cfg.Location
	if location == "" {
		location = "eu"
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", location)),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create Document AI client for %s: %w", location, err)
	}

	cfg.Location = location
	return newScanner(clientAdapter{client: client}, cfg, logger), nil
}

func newScanner(client processor, cfg config.ReceiptConfig, logger *zap.Logger) *DocumentAIScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentAIScanner{
		client:        client,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, cfg.Location, cfg.ProcessorID),
		maxFileSize:   cfg.MaxFileSize,
		timeout:       defaultTimeout,
		logger:        logger.Named("receipt"),
	}
}

// Scan sends the receipt to Document AI and maps the recognised entities.
// Fields the processor could not read are left nil or empty.
func (s *DocumentAIScanner) Scan(ctx context.Context, content []byte, mimeType string) (*expense.ScannedReceipt, error) {
	if len(content) == 0 {
		return nil, ErrEmptyReceipt
	}
	mimeType = normalizeMimeType(mimeType)
	if !SupportedMimeTypes[mimeType] {
		return nil, ErrUnsupportedType
	}
	if s.maxFileSize > 0 && int64(len(content)) > s.maxFileSize {
		return nil, shared.NewValidationError(fmt.Sprintf("Receipt exceeds the maximum size of %d bytes", s.maxFileSize))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.ProcessDocument(callCtx, &documentaipb.ProcessRequest{
		Name: s.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: content, MimeType: mimeType},
		},
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.GetDocument() == nil {
		return nil, shared.NewExternalServiceError(serviceName, fmt.Errorf("empty document in response"))
	}

	receipt := extractReceipt(resp.GetDocument())
	s.logger.Debug("Receipt scanned",
		zap.String("merchant", receipt.Merchant),
		zap.Bool("has_total", receipt.Total != nil),
		zap.Bool("has_date", receipt.Date != nil),
	)
	return receipt, nil
}

// Close releases the gRPC connection.
func (s *DocumentAIScanner) Close() error {
	return s.client.Close()
}

func (s *DocumentAIScanner) mapError(err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument:
		return shared.NewValidationError("Receipt could not be read; the file may be corrupted")
	case codes.DeadlineExceeded, codes.Canceled:
		return shared.NewExternalServiceError(serviceName, err)
	case codes.ResourceExhausted:
		return shared.NewRateLimitError(time.Minute)
	default:
		s.logger.Warn("Document AI request failed", zap.Error(err))
		return shared.NewExternalServiceError(serviceName, err)
	}
}

func normalizeMimeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return mimeType
}

// extractReceipt maps expense-processor entities. The first entity of each
// type wins; processors list the most confident candidate first.
func extractReceipt(doc *documentaipb.Document) *expense.ScannedReceipt {
	receipt := &expense.ScannedReceipt{Confidence: map[string]float32{}}

	for _, entity := range doc.GetEntities() {
		entityType := entity.GetType()
		if _, seen := receipt.Confidence[entityType]; seen {
			continue
		}

		switch entityType {
		case "supplier_name", "merchant_name":
			if receipt.Merchant == "" {
				receipt.Merchant = strings.TrimSpace(entity.GetMentionText())
			}
		case "receipt_date", "invoice_date", "purchase_date":
			if receipt.Date == nil {
				if d, ok := entityDate(entity); ok {
					receipt.Date = &d
				}
			}
		case "total_amount":
			if amount, currency, ok := entityMoney(entity); ok {
				receipt.Total = &amount
				if currency != "" {
					receipt.Currency = currency
				}
			}
		case "total_tax_amount":
			if amount, _, ok := entityMoney(entity); ok {
				receipt.Tax = &amount
			}
		case "currency":
			if receipt.Currency == "" {
				receipt.Currency = normalizeCurrency(entity.GetMentionText())
			}
		default:
			continue
		}
		receipt.Confidence[entityType] = entity.GetConfidence()
	}
	return receipt
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "2.1.2006", "02/01/2006", "02.01.06"}

func entityDate(entity *documentaipb.Document_Entity) (time.Time, bool) {
	if d := entity.GetNormalizedValue().GetDateValue(); d != nil && d.GetYear() > 0 {
		return time.Date(int(d.GetYear()), time.Month(d.GetMonth()), int(d.GetDay()), 0, 0, 0, 0, time.UTC), true
	}
	text := strings.TrimSpace(entity.GetMentionText())
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func entityMoney(entity *documentaipb.Document_Entity) (decimal.Decimal, string, bool) {
	if m := entity.GetNormalizedValue().GetMoneyValue(); m != nil {
		amount := decimal.NewFromInt(m.GetUnits()).Add(decimal.New(int64(m.GetNanos()), -9))
		return amount.Round(2), normalizeCurrency(m.GetCurrencyCode()), true
	}
	amount, ok := parseAmount(entity.GetMentionText())
	return amount, "", ok
}

// parseAmount reads German ("1.234,56") and English ("1,234.56") notations.
func parseAmount(text string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", "€", "", "$", "", "EUR", "", "USD", "").Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndexByte(cleaned, ',')
	lastDot := strings.LastIndexByte(cleaned, '.')
	switch {
	case lastComma > lastDot:
		// Comma is the decimal separator when it has at most two digits after it.
		if len(cleaned)-lastComma-1 <= 2 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return amount.Round(2), true
}

func normalizeCurrency(code string) string {
	switch c := strings.ToUpper(strings.TrimSpace(code)); c {
	case "€", "EURO":
		return "EUR"
	case "$", "US$":
		return "USD"
	case "£":
		return "GBP"
	default:
		if len(c) == 3 {
			return c
		}
		return ""
	}
}

var _ expense.ReceiptScanner = (*DocumentAIScanner)(nil)
