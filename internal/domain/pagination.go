package domain

import "math"

// LastPage requests the final page of a result set; Clamp resolves it.
const LastPage = math.MaxInt

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Clamp returns params whose page lies within [1, pages] for the given total.
// A page past the end becomes the last page; an empty result has one page.
func (p PaginationParams) Clamp(total int) (PaginationParams, int) {
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	pages := (total + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		pages = 1
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > pages {
		p.Page = pages
	}
	return p, pages
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items  []T
	Total  int
	Number int
	Pages  int
	Size   int
}

// NewPage builds a page from already clamped params.
func NewPage[T any](items []T, total int, params PaginationParams, pages int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:  items,
		Total:  total,
		Number: params.Page,
		Pages:  pages,
		Size:   params.PageSize,
	}
}
