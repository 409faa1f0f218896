package domain

// Pagination defaults
const (
	DefaultPageSize             = 10
	DefaultNotificationPageSize = 20
	MaxPageSize                 = 100
)

// Pagination describes one page of a list response.
// Pages is ceil(Total / PerPage).
type Pagination struct {
	Total       int64 `json:"total"`
	Pages       int64 `json:"pages"`
	CurrentPage int32 `json:"currentPage"`
	PerPage     int32 `json:"perPage"`
}

// NewPagination normalizes page/perPage and computes the page count.
func NewPagination(total int64, page, perPage int32) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	pages := (total + int64(perPage) - 1) / int64(perPage)
	return Pagination{
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
		PerPage:     perPage,
	}
}
