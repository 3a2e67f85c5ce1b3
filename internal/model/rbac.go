package model

import (
	"github.com/eduback/pkg/dal"
)

// 内置角色
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Role 角色模型，静态参考数据
type Role struct {
	dal.Model
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	Status      int8   `gorm:"default:1" json:"status"`

	Permissions []Permission `gorm:"many2many:sys_role_permission;joinForeignKey:RoleID;joinReferences:PermissionID" json:"permissions,omitempty"`
}

// TableName 表名
func (Role) TableName() string {
	return "sys_role"
}

// Permission 权限模型
// Name 是稳定的权限标识(如 MANAGE_USERS)，Resource/Action 描述其语义
type Permission struct {
	dal.Model
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	Resource    string `gorm:"size:100" json:"resource"`
	Action      string `gorm:"size:50" json:"action"`
	Status      int8   `gorm:"default:1" json:"status"`
}

// TableName 表名
func (Permission) TableName() string {
	return "sys_permission"
}

// RolePermission 角色权限关联
type RolePermission struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID       int64 `gorm:"index:idx_role_perm,unique;not null" json:"roleId"`
	PermissionID int64 `gorm:"index:idx_role_perm,unique;not null" json:"permissionId"`
}

// TableName 表名
func (RolePermission) TableName() string {
	return "sys_role_permission"
}
