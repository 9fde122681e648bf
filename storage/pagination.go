package storage

import "github.com/librarium/librarium/core"

// DefaultPerPage is used when a search does not specify a page size.
const DefaultPerPage = 10

// BookSearch describes the catalog search read path. All filters are optional
// and conjunctive: Title matches case-insensitive substrings, Author and
// Category match the exact display name as issued by the caller.
type BookSearch struct {
	Page     int
	PerPage  int
	Title    string
	Author   string
	Category string
}

// OpenLoanSearch describes the unreturned-loans read path. MemberName matches
// case-insensitive substrings of the borrowing member's name.
type OpenLoanSearch struct {
	Page       int
	PerPage    int
	MemberName string
}

// Pagination is the metadata attached to every paginated result. Pages are
// 1-indexed; a page beyond the last valid one is not an error, it carries an
// empty item set with accurate metadata.
type Pagination struct {
	Page       int  `json:"current_page"`
	PerPage    int  `json:"per_page"`
	TotalItems int  `json:"total"`
	TotalPages int  `json:"pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// BookPage is one page of the catalog search result.
type BookPage struct {
	Items []core.BookDetails `json:"items"`
	Pagination
}

// LoanPage is one page of the open-loans listing.
type LoanPage struct {
	Items []LoanRecord `json:"items"`
	Pagination
}

// Normalize clamps page and page size to sane values.
func (s *BookSearch) Normalize() {
	s.Page, s.PerPage = normalize(s.Page, s.PerPage)
}

// Normalize clamps page and page size to sane values.
func (s *OpenLoanSearch) Normalize() {
	s.Page, s.PerPage = normalize(s.Page, s.PerPage)
}

func normalize(page int, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}

	if perPage < 1 {
		perPage = DefaultPerPage
	}

	return page, perPage
}

// Paginate computes pagination metadata for a total item count.
func Paginate(page int, perPage int, totalItems int) Pagination {
	totalPages := totalItems / perPage
	if totalItems%perPage != 0 {
		totalPages++
	}

	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Slice returns the half-open index range [from, to) of the given page within
// a collection of totalItems, both 0 when the page is past the end.
func (p Pagination) Slice(totalItems int) (int, int) {
	from := (p.Page - 1) * p.PerPage
	if from >= totalItems {
		return 0, 0
	}

	to := from + p.PerPage
	if to > totalItems {
		to = totalItems
	}

	return from, to
}
