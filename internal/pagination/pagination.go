package pagination

const (
	// DefaultPerPage is used when the caller did not ask for a page size.
	DefaultPerPage = 20
	// MaxPerPage caps the page size regardless of what the caller asked for.
	MaxPerPage = 100
)

// Page holds the pagination metadata returned alongside every paginated listing.
type Page struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// Paginate computes page metadata from the full (pre-slice) result count.
// perPage is clamped to [1, MaxPerPage] (DefaultPerPage when unset), page to
// a minimum of 1. A page beyond TotalPages keeps TotalCount and TotalPages
// reflecting the full set so clients can detect an out-of-range page.
func Paginate(totalCount, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + perPage - 1) / perPage
	}

	return Page{
		CurrentPage: page,
		PerPage:     perPage,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Offset returns the slice offset for the page.
func (p Page) Offset() int {
	return (p.CurrentPage - 1) * p.PerPage
}
