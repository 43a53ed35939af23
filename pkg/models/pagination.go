package models

// PageRequest is a 1-based page request.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest clamps raw caller input: pages below 1 become 1, a
// non-positive size becomes defaultSize and sizes above maxSize are capped.
func NewPageRequest(page, pageSize, defaultSize, maxSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// PageInfo describes where a page sits in the full result set.
type PageInfo struct {
	Count       int  `json:"count"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Resolve fits the request to total matching rows and returns the page
// metadata plus the row offset to query from. A page past the end resolves to
// the last page; an empty result still has one (empty) page.
func (r PageRequest) Resolve(total int) (PageInfo, int) {
	size := r.PageSize
	if size < 1 {
		size = 1
	}

	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	page := r.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	info := PageInfo{
		Count:       total,
		Page:        page,
		PageSize:    size,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
	return info, (page - 1) * size
}

// Page is one page of entities.
type Page[T any] struct {
	Items []*T
	PageInfo
}

// ListFilter narrows list queries. Name is a case-insensitive substring
// matched against the natural key (name, or title for films).
type ListFilter struct {
	Name string
}
