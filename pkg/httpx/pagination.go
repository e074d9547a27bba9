package httpx

import (
	"net/http"
	"strconv"
)

// Pagination defaults for list endpoints.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams are the page/page_size query parameters of a list request.
type PageParams struct {
	Page     int
	PageSize int
}

// ParsePageParams reads page and page_size from the query string, applying
// the defaults and clamping page_size to MaxPageSize.
func ParsePageParams(r *http.Request) PageParams {
	p := PageParams{Page: 1, PageSize: DefaultPageSize}

	if v := r.URL.Query().Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			p.Page = page
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			p.PageSize = min(size, MaxPageSize)
		}
	}

	return p
}

// Offset returns the row offset for the current page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page wraps one page of results together with count metadata.
type Page struct {
	Count      int `json:"count"`
	PageNum    int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Results    any `json:"results"`
}

// NewPage builds the pagination envelope for a page of results. totalCount
// is the unpaginated row count.
func NewPage(params PageParams, totalCount int, results any) Page {
	totalPages := totalCount / params.PageSize
	if totalCount%params.PageSize != 0 {
		totalPages++
	}

	return Page{
		Count:      totalCount,
		PageNum:    params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		Results:    results,
	}
}
