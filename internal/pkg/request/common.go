package request

// ByIDRequest is a common struct for endpoints that require a UUID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// BySlugRequest is used by entities keyed by a short text id such as "field_1".
type BySlugRequest struct {
	ID string `uri:"id" binding:"required,max=64"`
}

// ListParams are the pagination query parameters shared by list endpoints.
type ListParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Normalize clamps page and page size into their accepted ranges.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset of the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
