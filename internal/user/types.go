package user

// UpdateRequest 管理端更新用户请求
type UpdateRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// ChangeStatusRequest 变更用户状态请求
type ChangeStatusRequest struct {
	Status int8 `json:"status" validate:"required,oneof=1 2"`
}

// ListQuery 用户列表查询参数
type ListQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
	Keyword  string `query:"keyword"`
	Status   int8   `query:"status"`
}
