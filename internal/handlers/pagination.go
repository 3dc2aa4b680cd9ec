package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crm-service/internal/repository"
	"crm-service/internal/services"
)

// PaginatedResponse is the list envelope: total row count plus absolute
// URLs for the adjacent pages, or null at either end.
type PaginatedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// parseListQuery reads pagination, search, ordering and the given filter
// parameters from the request query string.
func parseListQuery(c *gin.Context, filterParams ...string) services.ListQuery {
	q := services.ListQuery{
		Page:     1,
		PageSize: repository.DefaultPageSize,
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Filters:  map[string]string{},
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil && size > 0 {
		q.PageSize = size
	}

	for _, param := range filterParams {
		if v := c.Query(param); v != "" {
			q.Filters[param] = v
		}
	}
	return q
}

// Paginated builds the list envelope for the current request
func Paginated(c *gin.Context, q services.ListQuery, count int64, results interface{}) PaginatedResponse {
	resp := PaginatedResponse{
		Count:   count,
		Results: results,
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = repository.DefaultPageSize
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}

	if int64(q.Page*pageSize) < count {
		next := pageURL(c, q.Page+1)
		resp.Next = &next
	}
	if q.Page > 1 {
		prev := pageURL(c, q.Page-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL rebuilds the request URL with the page parameter replaced
func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL

	query := u.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = query.Encode()

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	u.Scheme = scheme
	u.Host = c.Request.Host
	return u.String()
}

// ListResponse sends a paginated list response
func ListResponse(c *gin.Context, q services.ListQuery, count int64, results interface{}) {
	c.JSON(http.StatusOK, Paginated(c, q, count, results))
}
