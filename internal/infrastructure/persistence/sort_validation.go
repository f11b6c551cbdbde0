package persistence

import (
	"strings"

	"github.com/botforce/unity/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// applyPaging orders by a whitelisted column and applies offset/limit
func applyPaging(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// containsPattern builds a case-insensitive LIKE pattern; pair it with LOWER(column)
func containsPattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// DocumentSortFields contains allowed sort fields for documents
var DocumentSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"document_number": true,
	"issue_date":      true,
	"due_date":        true,
	"status":          true,
	"total":           true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"expense_date": true,
	"merchant":     true,
	"category":     true,
	"amount":       true,
	"status":       true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"city":       true,
}

// TemplateSortFields contains allowed sort fields for recurring templates
var TemplateSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"next_issue_date": true,
	"frequency":       true,
}

// RecurringCostSortFields contains allowed sort fields for recurring costs
var RecurringCostSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"amount":     true,
	"frequency":  true,
}

// ExportSortFields contains allowed sort fields for accounting exports
var ExportSortFields = map[string]bool{
	"created_at":   true,
	"period_start": true,
	"period_end":   true,
	"name":         true,
}
