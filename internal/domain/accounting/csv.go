package accounting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CSVHeader is the first record of every export file
var CSVHeader = []string{"Type", "Date", "Number", "Customer/Merchant", "Category", "Subtotal", "Tax", "Total", "Status"}

// WriteCSV renders the rows as CSV
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		record := []string{
			string(r.Type),
			r.Date.Format("2006-01-02"),
			safeCell(r.Number),
			safeCell(r.Party),
			safeCell(r.Category),
			r.Subtotal.StringFixed(2),
			r.Tax.StringFixed(2),
			r.Total.StringFixed(2),
			r.Status,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// safeCell stops spreadsheet programs from evaluating user text as a formula
func safeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

// Slug turns a name into a lowercase ASCII file name part.
// "Q1 Übersicht 2026" becomes "q1-ubersicht-2026".
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, name)
	if err != nil {
		ascii = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == 'ß':
			b.WriteString("ss")
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	if slug == "" {
		return "export"
	}
	return slug
}

// FileKey is the object storage key of an export's CSV
func FileKey(tenantID, exportID uuid.UUID, name string) string {
	return fmt.Sprintf("exports/%s/%s/%s.csv", tenantID, exportID, Slug(name))
}
