package dal

// Pagination 分页参数
type Pagination struct {
	Page     int `json:"page" query:"page"`
	PageSize int `json:"pageSize" query:"pageSize"`
}

// NewPagination 创建分页参数，带默认值修正
func NewPagination(page, pageSize int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return &Pagination{Page: page, PageSize: pageSize}
}

// Offset 计算偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// NewPagedResult 创建分页结果
func NewPagedResult[T any](list []T, total int64, p *Pagination) *PagedResult[T] {
	return &PagedResult[T]{
		List:     list,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}
