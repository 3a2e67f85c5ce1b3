package model

import (
	"time"

	"github.com/eduback/pkg/dal"
)

// 用户状态
const (
	UserStatusActive   int8 = 1
	UserStatusDisabled int8 = 2
)

// User 用户模型
// 正常流程不做物理删除，停用通过状态位实现
type User struct {
	dal.Model
	Email       string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Username    string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password    string     `gorm:"size:100;not null" json:"-"`
	Nickname    string     `gorm:"size:50" json:"nickname"`
	Status      int8       `gorm:"default:1" json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`

	Roles []Role `gorm:"many2many:sys_user_role;joinForeignKey:UserID;joinReferences:RoleID" json:"roles,omitempty"`
}

// TableName 表名
func (User) TableName() string {
	return "sys_user"
}

// IsActive 账号是否可用
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// UserRole 用户角色关联
// 写入路径保持每用户至多一行(单角色模型)，表结构保留通用的多对多形态
type UserRole struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"index:idx_user_role,unique;not null" json:"userId"`
	RoleID int64 `gorm:"index:idx_user_role,unique;not null" json:"roleId"`
}

// TableName 表名
func (UserRole) TableName() string {
	return "sys_user_role"
}

// UserPermission 用户直接权限授予
// 独立于角色的补充/覆盖授权，菜单默认授权也落在这里
type UserPermission struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"index:idx_user_perm,unique;not null" json:"userId"`
	PermissionID int64     `gorm:"index:idx_user_perm,unique;not null" json:"permissionId"`
	GrantedBy    int64     `gorm:"default:0" json:"grantedBy"`
	GrantedAt    time.Time `gorm:"autoCreateTime" json:"grantedAt"`
}

// TableName 表名
func (UserPermission) TableName() string {
	return "sys_user_permission"
}
