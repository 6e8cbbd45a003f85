package models

// Paging captures a page index (1-based), a page size and the total number of
// results, mirroring the offset arithmetic of the listing endpoints.
type Paging struct {
	Page     int
	PageSize int
	Total    int
}

// NewPaging builds paging for a page index and size with a known total.
func NewPaging(page, pageSize, total int) Paging {
	return Paging{Page: page, PageSize: pageSize, Total: total}
}

// Offset returns the start index of the page within the full result list.
func (p Paging) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// HasNextPage reports whether results exist beyond the current page.
func (p Paging) HasNextPage() bool {
	return p.Total > p.Page*p.PageSize
}
