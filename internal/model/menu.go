package model

import (
	"github.com/eduback/pkg/dal"
)

// 菜单状态
const (
	MenuStatusActive   int8 = 1
	MenuStatusDisabled int8 = 2
)

// Menu 菜单模型，自引用树
// 删除是软删除(状态位翻转)，保持与历史授权记录的引用完整性
type Menu struct {
	dal.ModelWithUser
	ParentID  int64   `gorm:"default:0;index" json:"parentId"`
	Title     string  `gorm:"size:50;not null" json:"title"`
	Route     string  `gorm:"size:200" json:"route"`
	Component string  `gorm:"size:200" json:"component"` // 客户端组件注册表的键
	Icon      string  `gorm:"size:50" json:"icon"`
	PermKey   string  `gorm:"size:100;index" json:"permKey"` // 所需权限标识，空表示对所有人可见
	SortOrder int     `gorm:"default:1" json:"sortOrder"`
	Status    int8    `gorm:"default:1" json:"status"`
	Children  []*Menu `gorm:"-" json:"children,omitempty"`
}

// TableName 表名
func (Menu) TableName() string {
	return "sys_menu"
}

// IsActive 菜单是否启用
func (m *Menu) IsActive() bool {
	return m.Status == MenuStatusActive
}
