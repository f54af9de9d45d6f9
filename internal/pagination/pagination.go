package pagination

// Pagination describes one page of a listing. It is computed fresh for every
// listing request and never persisted.
type Pagination struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// New builds a page descriptor for total items split into pages of perPage,
// clamping requestedPage into [1, max(TotalPages, 1)]. It never fails: a
// negative total counts as an empty listing and perPage below 1 is treated as 1.
func New(total, perPage, requestedPage int) Pagination {
	if total < 0 {
		total = 0
	}
	if perPage < 1 {
		perPage = 1
	}

	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	return Pagination{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: resolveCurrentPage(total, requestedPage, totalPages),
		TotalPages:  totalPages,
	}
}

// Offset is the zero-based index of the first item on the current page.
func (p Pagination) Offset() int {
	return (p.CurrentPage - 1) * p.PerPage
}

// Limit is the number of rows to fetch for the current page.
func (p Pagination) Limit() int {
	return p.PerPage
}

func resolveCurrentPage(total, page, totalPages int) int {
	if total == 0 {
		// empty listing: TotalPages is 0 but we still report page 1
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	if page < 1 {
		return 1
	}
	return page
}
