package rbac

import (
	"context"
	"strings"

	"github.com/eduback/pkg/errors"
	"github.com/eduback/pkg/logger"
	"go.uber.org/zap"
)

// Assigner 角色与权限分配器
// 角色分配是单角色语义：先清除既有角色和直接授权，再写入新角色并
// 按静态映射重种菜单授权，整个过程在一个事务里完成
type Assigner struct {
	repo     Repository
	resolver *Resolver
}

// NewAssigner 创建分配器
func NewAssigner(repo Repository, resolver *Resolver) *Assigner {
	return &Assigner{repo: repo, resolver: resolver}
}

// EnsureRole 校验角色存在，供注册流程在写入用户之前先行检查
func (a *Assigner) EnsureRole(ctx context.Context, roleName string) error {
	role, err := a.repo.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	if role == nil {
		return errors.Validation([]string{"role '" + roleName + "' not found"})
	}
	return nil
}

// AssignRole 分配角色并种入该角色的默认菜单授权
func (a *Assigner) AssignRole(ctx context.Context, userID int64, roleName string, grantedBy int64) error {
	role, err := a.repo.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	if role == nil {
		return errors.Validation([]string{"role '" + roleName + "' not found"})
	}

	permIDs, err := a.defaultMenuPermissionIDs(ctx, roleName)
	if err != nil {
		return err
	}

	if err := a.repo.ReplaceUserRole(ctx, userID, role.ID, permIDs, grantedBy); err != nil {
		return err
	}

	a.resolver.Invalidate(ctx, userID)
	return nil
}

// defaultMenuPermissionIDs 按静态角色→菜单标识表解析出应种入的权限ID
// 权限表里缺失的标识只记日志不中断，批量授权是尽力而为的语义
func (a *Assigner) defaultMenuPermissionIDs(ctx context.Context, roleName string) ([]int64, error) {
	menuKeys := DefaultRoleMenuKeys[roleName]
	if len(menuKeys) == 0 {
		return nil, nil
	}

	perms, err := a.repo.FindPermissionsByNames(ctx, menuKeys)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{}, len(perms))
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		found[p.Name] = struct{}{}
		ids = append(ids, p.ID)
	}

	var missing []string
	for _, key := range menuKeys {
		if _, ok := found[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		logger.Warn("menu permissions missing from store, skipped",
			zap.String("role", roleName),
			zap.String("keys", strings.Join(missing, ",")))
	}

	return ids, nil
}

// GrantPermission 为用户直接授予权限，幂等
func (a *Assigner) GrantPermission(ctx context.Context, userID int64, permKey string, grantedBy int64) error {
	perm, err := a.repo.FindPermissionByName(ctx, permKey)
	if err != nil {
		return err
	}
	if perm == nil {
		return errors.NotFound("permission")
	}

	if err := a.repo.GrantUserPermission(ctx, userID, perm.ID, grantedBy); err != nil {
		return err
	}

	a.resolver.Invalidate(ctx, userID)
	return nil
}

// RevokePermission 撤销用户的直接授权
func (a *Assigner) RevokePermission(ctx context.Context, userID int64, permKey string) error {
	perm, err := a.repo.FindPermissionByName(ctx, permKey)
	if err != nil {
		return err
	}
	if perm == nil {
		return errors.NotFound("permission")
	}

	if err := a.repo.RevokeUserPermission(ctx, userID, perm.ID); err != nil {
		return err
	}

	a.resolver.Invalidate(ctx, userID)
	return nil
}
