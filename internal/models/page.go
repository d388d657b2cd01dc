package models

// Page is the envelope every paginated listing endpoint returns.
// Page numbers are 1-based.
type Page[T any] struct {
	Total    int `json:"total"`
	PageSize int `json:"pageSize"`
	Results  []T `json:"results"`
}

// TotalPages returns the number of pages implied by Total and PageSize.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// NextPage returns the page following current, or 0 when current is the
// last page (or out of range).
func (p Page[T]) NextPage(current int) int {
	if current < p.TotalPages() {
		return current + 1
	}
	return 0
}
