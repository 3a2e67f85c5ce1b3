package rbac_test

import (
	"context"
	"testing"
	"time"

	"github.com/eduback/internal/bootstrap"
	"github.com/eduback/internal/model"
	"github.com/eduback/internal/rbac"
	"github.com/eduback/pkg/config"
	"github.com/eduback/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.DatabaseConfig{
		Driver:       "sqlite",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.Seed(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, username string) *model.User {
	t.Helper()
	u := &model.User{
		Email:    email,
		Username: username,
		Password: "irrelevant",
		Status:   model.UserStatusActive,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestResolveUnionsRoleAndDirectGrants(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(repo)
	assigner := rbac.NewAssigner(repo, resolver)

	u := createUser(t, db, "s1@example.com", "s1")
	require.NoError(t, assigner.AssignRole(ctx, u.ID, model.RoleStudent, 0))

	perms, err := resolver.Resolve(ctx, u.ID)
	require.NoError(t, err)

	// 角色权限与种入的菜单直接授权合并
	assert.Contains(t, perms, rbac.PermViewCourses)
	assert.Contains(t, perms, rbac.PermViewGrades)
	assert.Contains(t, perms, rbac.PermMenuDashboard)
	assert.NotContains(t, perms, rbac.PermManageUsers)

	// 结果有序且无重复
	seen := make(map[string]bool)
	for i, p := range perms {
		assert.False(t, seen[p], "duplicate permission %s", p)
		seen[p] = true
		if i > 0 {
			assert.Less(t, perms[i-1], p)
		}
	}
}

func TestDirectGrantSupplementsRole(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(repo)
	assigner := rbac.NewAssigner(repo, resolver)

	u := createUser(t, db, "s2@example.com", "s2")
	require.NoError(t, assigner.AssignRole(ctx, u.ID, model.RoleStudent, 0))

	held, err := resolver.HasPermission(ctx, u.ID, rbac.PermManageAssignments)
	require.NoError(t, err)
	require.False(t, held)

	require.NoError(t, assigner.GrantPermission(ctx, u.ID, rbac.PermManageAssignments, 1))

	held, err = resolver.HasPermission(ctx, u.ID, rbac.PermManageAssignments)
	require.NoError(t, err)
	assert.True(t, held)

	// 幂等：重复授予不报错也不产生重复
	require.NoError(t, assigner.GrantPermission(ctx, u.ID, rbac.PermManageAssignments, 1))
	perms, err := resolver.Resolve(ctx, u.ID)
	require.NoError(t, err)
	count := 0
	for _, p := range perms {
		if p == rbac.PermManageAssignments {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRevokeRemovesDirectGrant(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(repo)
	assigner := rbac.NewAssigner(repo, resolver)

	u := createUser(t, db, "s3@example.com", "s3")
	require.NoError(t, assigner.AssignRole(ctx, u.ID, model.RoleStudent, 0))
	require.NoError(t, assigner.GrantPermission(ctx, u.ID, rbac.PermViewReports, 1))
	require.NoError(t, assigner.RevokePermission(ctx, u.ID, rbac.PermViewReports))

	held, err := resolver.HasPermission(ctx, u.ID, rbac.PermViewReports)
	require.NoError(t, err)
	assert.False(t, held)

	// 角色来源的权限不受直接授权撤销影响
	held, err = resolver.HasPermission(ctx, u.ID, rbac.PermViewCourses)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestRoleReassignmentClearsPreviousGrants(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(repo)
	assigner := rbac.NewAssigner(repo, resolver)

	u := createUser(t, db, "s4@example.com", "s4")
	require.NoError(t, assigner.AssignRole(ctx, u.ID, model.RoleStudent, 0))
	require.NoError(t, assigner.GrantPermission(ctx, u.ID, rbac.PermBackupSystem, 1))

	// 换角色：旧角色与全部直接授权被清除，按新角色重种菜单授权
	require.NoError(t, assigner.AssignRole(ctx, u.ID, model.RoleTeacher, 1))

	role, err := resolver.GetUserRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, role)

	perms, err := resolver.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Contains(t, perms, rbac.PermGradeAssignments)
	assert.Contains(t, perms, rbac.PermMenuReports)
	assert.NotContains(t, perms, rbac.PermBackupSystem)
	assert.NotContains(t, perms, rbac.PermViewGrades)
	assert.NotContains(t, perms, rbac.PermMenuGrades)
}

func TestAssignUnknownRoleFails(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(repo)
	assigner := rbac.NewAssigner(repo, resolver)

	u := createUser(t, db, "s5@example.com", "s5")
	err := assigner.AssignRole(ctx, u.ID, "superuser", 0)
	require.Error(t, err)
}

func TestHasAnyAndHasAll(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	repo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(repo)
	assigner := rbac.NewAssigner(repo, resolver)

	u := createUser(t, db, "s6@example.com", "s6")
	require.NoError(t, assigner.AssignRole(ctx, u.ID, model.RoleStudent, 0))

	ok, err := resolver.HasAny(ctx, u.ID, []string{rbac.PermManageUsers, rbac.PermViewCourses})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = resolver.HasAll(ctx, u.ID, []string{rbac.PermManageUsers, rbac.PermViewCourses})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = resolver.HasAll(ctx, u.ID, []string{rbac.PermViewCourses, rbac.PermViewGrades})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = resolver.HasAny(ctx, u.ID, []string{rbac.PermManageUsers, rbac.PermBackupSystem})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheIsInvalidatedOnGrantChange(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	client, mr, err := database.ConnectRedis(&config.RedisConfig{Mode: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	repo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(repo).
		WithCache(database.NewCacheWithClient(client, "rbac"), 5*time.Minute)
	assigner := rbac.NewAssigner(repo, resolver)

	u := createUser(t, db, "s7@example.com", "s7")
	require.NoError(t, assigner.AssignRole(ctx, u.ID, model.RoleStudent, 0))

	// 第一次解析写缓存
	perms, err := resolver.Resolve(ctx, u.ID)
	require.NoError(t, err)
	require.NotContains(t, perms, rbac.PermViewReports)

	// 授权变更使缓存失效，下一次解析看到新权限
	require.NoError(t, assigner.GrantPermission(ctx, u.ID, rbac.PermViewReports, 1))
	perms, err = resolver.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Contains(t, perms, rbac.PermViewReports)
}
