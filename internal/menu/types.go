package menu

// 孤儿节点策略：父菜单因权限不可见时子菜单的归宿
const (
	OrphanPromote = "promote" // 提升为根节点，深层功能不会因中间菜单权限缺失而被隐藏
	OrphanDrop    = "drop"    // 连同子树一起丢弃
)

// CreateRequest 创建菜单请求
type CreateRequest struct {
	ParentID  int64  `json:"parentId"`
	Title     string `json:"title" validate:"required,max=50"`
	Route     string `json:"route" validate:"max=200"`
	Component string `json:"component" validate:"max=200"`
	Icon      string `json:"icon" validate:"max=50"`
	PermKey   string `json:"permKey" validate:"max=100"`
	SortOrder int    `json:"sortOrder"`
}

// UpdateRequest 更新菜单请求
type UpdateRequest struct {
	ParentID  *int64  `json:"parentId"`
	Title     *string `json:"title" validate:"omitempty,max=50"`
	Route     *string `json:"route"`
	Component *string `json:"component"`
	Icon      *string `json:"icon"`
	PermKey   *string `json:"permKey"`
	SortOrder *int    `json:"sortOrder"`
	Status    *int8   `json:"status"`
}
