package services

import (
	"fmt"

	"github.com/google/uuid"

	"crm-service/internal/repository"
)

// ListQuery carries the client-facing collection query parameters. Each
// entity service translates the generic filter names into columns and drops
// parameters it does not recognize.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Ordering string
	Filters  map[string]string
}

// buildListOptions translates a ListQuery into repository options using the
// given filter-name -> column mapping. Values for columns ending in "_id"
// must be valid UUIDs.
func buildListOptions(q ListQuery, filterColumns map[string]string) (repository.ListOptions, error) {
	opts := repository.ListOptions{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Ordering: q.Ordering,
	}
	for name, value := range q.Filters {
		column, ok := filterColumns[name]
		if !ok || value == "" {
			continue
		}
		if len(column) > 3 && column[len(column)-3:] == "_id" {
			id, err := uuid.Parse(value)
			if err != nil {
				return opts, NewValidationError(name, fmt.Sprintf("%q is not a valid id", value))
			}
			if opts.Filters == nil {
				opts.Filters = map[string]interface{}{}
			}
			opts.Filters[column] = id
			continue
		}
		if opts.Filters == nil {
			opts.Filters = map[string]interface{}{}
		}
		opts.Filters[column] = value
	}
	return opts, nil
}
