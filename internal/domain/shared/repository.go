package shared

// DefaultPageSize applies when a list request names no page size
const DefaultPageSize = 20

// Filter holds paging, ordering and free-text search for list queries.
// OrderBy is checked against a per-table whitelist by the repository.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// NewFilter builds a filter, starting at page 1 with DefaultPageSize rows
// when the caller leaves paging unset
func NewFilter(page, pageSize int, orderBy, orderDir, search string) Filter {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
	}
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
