package utils

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// Pagination holds the page/limit query parameters of a list request.
type Pagination struct {
	Page  int64
	Limit int64
}

// ParsePagination reads page and limit, falling back to defaults on
// missing or malformed values.
func ParsePagination(page, limit string) Pagination {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.ParseInt(page, 10, 64); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.ParseInt(limit, 10, 64); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

// Skip returns the number of documents before the current page.
func (p Pagination) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pages returns the number of pages needed for total documents.
func (p Pagination) Pages(total int64) int64 {
	if total == 0 || p.Limit < 1 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
