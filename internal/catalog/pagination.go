package catalog

import "strconv"

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination describes one page of a collection.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ParsePage reads page and per_page query values. Missing, malformed or
// non-positive values fall back to the defaults; per_page is capped.
func ParsePage(pageValue, perPageValue string) (page, perPage int) {
	page = positiveOr(pageValue, DefaultPage)
	perPage = min(positiveOr(perPageValue, DefaultPerPage), MaxPerPage)
	return page, perPage
}

func positiveOr(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// NewPagination computes page metadata for total items.
func NewPagination(total, page, perPage int) Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}

// Paginate returns the slice of items on the requested page. Pages past the
// end yield an empty, non-nil slice.
func Paginate[T any](items []T, p Pagination) []T {
	if len(items) == 0 || p.Page < 1 || p.PerPage < 1 {
		return []T{}
	}
	// Compare page indexes before multiplying so huge page numbers cannot wrap.
	if p.Page-1 > (len(items)-1)/p.PerPage {
		return []T{}
	}
	start := (p.Page - 1) * p.PerPage
	end := min(start+p.PerPage, len(items))
	return items[start:end]
}
