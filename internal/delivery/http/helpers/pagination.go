package helpers

import (
	"net/http"
	"strconv"

	"eventhub/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage        = 1
	DefaultPageSize    = 10
	MaxPageSize        = 100
	ListingPageSize    = 9
	TagListingPageSize = 12
)

// parsePage follows Django's Paginator.get_page: a missing or non-integer
// page is the first page, a number below 1 is the last page.
func parsePage(r *http.Request) int {
	v, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return DefaultPage
	}
	if v < 1 {
		return domain.LastPage
	}
	return v
}

// ParsePagination reads page and page_size from the request query string,
// clamps them to valid ranges, and returns domain.PaginationParams.
// Invalid or missing values fall back to defaults. Pages past the end are clamped by the service.
func ParsePagination(r *http.Request) domain.PaginationParams {
	pageSize := DefaultPageSize
	if s := r.URL.Query().Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			pageSize = min(v, MaxPageSize)
		}
	}
	return domain.PaginationParams{Page: parsePage(r), PageSize: pageSize}
}

// ParsePage reads only the page number; the page size is fixed by the listing.
func ParsePage(r *http.Request, pageSize int) domain.PaginationParams {
	return domain.PaginationParams{Page: parsePage(r), PageSize: pageSize}
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
// TotalPages is computed as ceiling(total / pageSize) and is at least 1.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 1
	if pageSize > 0 && total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// MetaOf returns the metadata of a service page.
func MetaOf[T any](p *domain.Page[T]) PaginationMeta {
	return PaginationMeta{Page: p.Number, PageSize: p.Size, Total: p.Total, TotalPages: p.Pages}
}
