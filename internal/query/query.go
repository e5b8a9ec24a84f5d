package query

import (
	"github.com/krupapatkar/appsolution-admin/internal/errs"
)

// Scope tells the query engine whether the caller is public or admin.
// Public callers only see ACTIVE products and PUBLISHED posts; admin
// callers see the full status range unless they filter explicitly.
type Scope int

const (
	ScopePublic Scope = iota
	ScopeAdmin
)

// Default page sizes per listing context, matching the storefront and
// admin panel page layouts.
const (
	DefaultProductPageSize = 9
	DefaultBlogPageSize    = 6
	DefaultAdminPageSize   = 10
)

// Page is a normalized, 1-indexed pagination window.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NormalizePage substitutes defaults for missing page parameters and
// rejects negative ones. A zero value means "not supplied".
func NormalizePage(number, size, defaultSize int) (Page, error) {
	if number < 0 {
		return Page{}, errs.Validation("page", "must be a positive integer")
	}
	if size < 0 {
		return Page{}, errs.Validation("pageSize", "must be a positive integer")
	}
	if number == 0 {
		number = 1
	}
	if size == 0 {
		size = defaultSize
	}
	return Page{Number: number, Size: size}, nil
}

// TotalPages computes ceil(total / size).
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// ListParams carries the filter, search and pagination inputs shared by
// every entity listing.
type ListParams struct {
	Scope    Scope
	Category string
	Status   string
	Search   string
	Page     Page
}
