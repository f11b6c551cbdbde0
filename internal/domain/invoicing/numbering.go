package invoicing

import (
	"fmt"
	"strings"
)

// Fallback prefixes when the company profile does not define its own
const (
	DefaultInvoicePrefix    = "INV"
	DefaultCreditNotePrefix = "CN"
)

// FormatDocumentNumber renders {prefix}-{year}-{sequence}
func FormatDocumentNumber(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%04d", strings.ToUpper(strings.TrimSpace(prefix)), year, sequence)
}

// NumberPrefixes resolves the prefix per document type
type NumberPrefixes struct {
	Invoice    string
	CreditNote string
}

// For returns the prefix for docType, falling back to the defaults
func (p NumberPrefixes) For(docType DocumentType) string {
	switch docType {
	case DocumentTypeCreditNote:
		if p.CreditNote != "" {
			return p.CreditNote
		}
		return DefaultCreditNotePrefix
	default:
		if p.Invoice != "" {
			return p.Invoice
		}
		return DefaultInvoicePrefix
	}
}

// NumberPattern is the SQL LIKE pattern matching numbers of one prefix and year
func NumberPattern(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-%%", strings.ToUpper(strings.TrimSpace(prefix)), year)
}
