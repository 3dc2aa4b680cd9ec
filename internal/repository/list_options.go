package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize matches the API-wide pagination default
	DefaultPageSize = 20
	// MaxPageSize caps client-requested page sizes
	MaxPageSize = 100
)

// ListOptions carries pagination, filtering, search and ordering parameters
// for collection queries. Filters are exact-match column filters already
// validated by the service layer.
type ListOptions struct {
	Page     int
	PageSize int
	Filters  map[string]interface{}
	Search   string
	Ordering string
}

// limitOffset normalizes page/page_size into SQL limit/offset values.
func (o ListOptions) limitOffset() (int, int) {
	size := o.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	page := o.Page
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}

// applyFilters adds exact-match WHERE clauses for each filter entry.
func applyFilters(q *gorm.DB, filters map[string]interface{}) *gorm.DB {
	for column, value := range filters {
		q = q.Where(column+" = ?", value)
	}
	return q
}

// applySearch adds a case-insensitive substring match across the given columns.
func applySearch(q *gorm.DB, search string, columns []string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + search + "%"
	clause := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clause[i] = col + " ILIKE ?"
		args[i] = pattern
	}
	return q.Where(strings.Join(clause, " OR "), args...)
}

// applyOrdering adds an ORDER BY clause. The ordering parameter uses the
// API convention of a leading "-" for descending order. Fields not present
// in the allowed map are ignored and the default ordering is used instead.
func applyOrdering(q *gorm.DB, ordering, defaultOrder string, allowed map[string]string) *gorm.DB {
	if ordering == "" {
		return q.Order(defaultOrder)
	}
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	column, ok := allowed[field]
	if !ok {
		return q.Order(defaultOrder)
	}
	if desc {
		return q.Order(column + " DESC")
	}
	return q.Order(column + " ASC")
}
