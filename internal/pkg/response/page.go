package response

import "github.com/nekogravitycat/pitch-booking-backend/internal/pkg/request"

// PageResponse is the envelope of paginated list endpoints.
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// NewPageResponse wraps one page of items. Items is never null in JSON.
func NewPageResponse[T any](items []T, params request.ListParams, total int) PageResponse[T] {
	if items == nil {
		items = make([]T, 0)
	}

	return PageResponse[T]{
		Items:    items,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	}
}
