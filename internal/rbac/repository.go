package rbac

import (
	"context"

	"github.com/eduback/internal/model"
	"github.com/eduback/pkg/dal"
	"gorm.io/gorm"
)

// Repository RBAC仓储接口
type Repository interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	FindPermissionByName(ctx context.Context, name string) (*model.Permission, error)
	FindPermissionsByNames(ctx context.Context, names []string) ([]model.Permission, error)

	GetUserRole(ctx context.Context, userID int64) (*model.Role, error)
	GetRolePermissionKeys(ctx context.Context, roleID int64) ([]string, error)
	GetUserDirectPermissionKeys(ctx context.Context, userID int64) ([]string, error)

	ReplaceUserRole(ctx context.Context, userID, roleID int64, directPermIDs []int64, grantedBy int64) error
	GrantUserPermission(ctx context.Context, userID, permissionID, grantedBy int64) error
	RevokeUserPermission(ctx context.Context, userID, permissionID int64) error

	DB() *gorm.DB
}

// repository RBAC仓储实现
type repository struct {
	db    *gorm.DB
	roles *dal.BaseRepository[model.Role]
	perms *dal.BaseRepository[model.Permission]
}

// NewRepository 创建RBAC仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db:    db,
		roles: dal.NewBaseRepository[model.Role](db),
		perms: dal.NewBaseRepository[model.Permission](db),
	}
}

// DB 获取数据库实例
func (r *repository) DB() *gorm.DB {
	return r.db
}

// ListRoles 获取所有启用的角色
func (r *repository) ListRoles(ctx context.Context) ([]model.Role, error) {
	return r.roles.FindAll(ctx, map[string]interface{}{"status": int8(1)}, dal.WithOrder("id ASC"))
}

// FindRoleByName 根据名称查找角色
func (r *repository) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	return r.roles.FindOne(ctx, map[string]interface{}{"name": name})
}

// ListPermissions 获取所有启用的权限
func (r *repository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	return r.perms.FindAll(ctx, map[string]interface{}{"status": int8(1)}, dal.WithOrder("id ASC"))
}

// FindPermissionByName 根据权限标识查找权限
func (r *repository) FindPermissionByName(ctx context.Context, name string) (*model.Permission, error) {
	return r.perms.FindOne(ctx, map[string]interface{}{"name": name})
}

// FindPermissionsByNames 根据一组权限标识批量查找
func (r *repository) FindPermissionsByNames(ctx context.Context, names []string) ([]model.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var perms []model.Permission
	if err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// GetUserRole 获取用户当前角色，无角色时返回 nil
func (r *repository) GetUserRole(ctx context.Context, userID int64) (*model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN sys_user_role ur ON ur.role_id = sys_role.id").
		Where("ur.user_id = ?", userID).
		Order("ur.id ASC").
		Limit(1).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, nil
	}
	return &roles[0], nil
}

// GetRolePermissionKeys 获取角色通过关联表持有的权限标识
func (r *repository) GetRolePermissionKeys(ctx context.Context, roleID int64) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&model.Permission{}).
		Joins("JOIN sys_role_permission rp ON rp.permission_id = sys_permission.id").
		Where("rp.role_id = ? AND sys_permission.status = ?", roleID, int8(1)).
		Pluck("sys_permission.name", &keys).Error
	return keys, err
}

// GetUserDirectPermissionKeys 获取用户的直接授权标识
func (r *repository) GetUserDirectPermissionKeys(ctx context.Context, userID int64) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&model.Permission{}).
		Joins("JOIN sys_user_permission up ON up.permission_id = sys_permission.id").
		Where("up.user_id = ? AND sys_permission.status = ?", userID, int8(1)).
		Pluck("sys_permission.name", &keys).Error
	return keys, err
}

// ReplaceUserRole 以事务方式重设用户角色
// 先清除既有角色再写入新角色，避免出现双角色窗口；同时清空并重种直接授权，
// 保证旧角色独有的授权不会残留
func (r *repository) ReplaceUserRole(ctx context.Context, userID, roleID int64, directPermIDs []int64, grantedBy int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.UserRole{UserID: userID, RoleID: roleID}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.UserPermission{}).Error; err != nil {
			return err
		}
		if len(directPermIDs) == 0 {
			return nil
		}
		grants := make([]model.UserPermission, len(directPermIDs))
		for i, permID := range directPermIDs {
			grants[i] = model.UserPermission{
				UserID:       userID,
				PermissionID: permID,
				GrantedBy:    grantedBy,
			}
		}
		return tx.CreateInBatches(grants, 100).Error
	})
}

// GrantUserPermission 直接授权，重复授权保持幂等
func (r *repository) GrantUserPermission(ctx context.Context, userID, permissionID, grantedBy int64) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&model.UserPermission{
		UserID:       userID,
		PermissionID: permissionID,
		GrantedBy:    grantedBy,
	}).Error
}

// RevokeUserPermission 撤销直接授权
func (r *repository) RevokeUserPermission(ctx context.Context, userID, permissionID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&model.UserPermission{}).Error
}
