package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/eduback/internal/auth"
	"github.com/eduback/internal/bootstrap"
	"github.com/eduback/internal/menu"
	"github.com/eduback/internal/model"
	"github.com/eduback/internal/rbac"
	"github.com/eduback/internal/user"
	pkgauth "github.com/eduback/pkg/auth"
	"github.com/eduback/pkg/config"
	"github.com/eduback/pkg/database"
	"github.com/eduback/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	users    user.Repository
	resolver *rbac.Resolver
	assigner *rbac.Assigner
	tokens   *pkgauth.TokenManager
	service  *auth.Service
}

func setup(t *testing.T) *testEnv {
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

	rbacRepo := rbac.NewRepository(db)
	resolver := rbac.NewResolver(rbacRepo)
	assigner := rbac.NewAssigner(rbacRepo, resolver)
	users := user.NewRepository(db)
	menus := menu.NewService(menu.NewRepository(db), resolver, menu.OrphanPromote)
	tokens := pkgauth.NewTokenManager(&config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "eduback-test",
		AccessExpire:  900,
		RefreshExpire: 604800,
	})

	return &testEnv{
		db:       db,
		users:    users,
		resolver: resolver,
		assigner: assigner,
		tokens:   tokens,
		service:  auth.NewService(users, resolver, assigner, menus, tokens),
	}
}

func registerReq(email, username string) *auth.RegisterRequest {
	return &auth.RegisterRequest{
		Email:    email,
		Username: username,
		Password: "Abcdef12",
	}
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	profile, err := env.service.Register(ctx, registerReq("new@example.com", "newbie"))
	require.NoError(t, err)

	assert.Equal(t, model.RoleStudent, profile.Role)
	assert.Contains(t, profile.Permissions, rbac.PermViewCourses)
	assert.Contains(t, profile.Permissions, rbac.PermMenuDashboard)
	assert.NotContains(t, profile.Permissions, rbac.PermManageUsers)

	// 密码不落明文
	stored, err := env.users.FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "Abcdef12", stored.Password)
	assert.True(t, pkgauth.CheckPassword("Abcdef12", stored.Password))
}

func TestRegisterWithExplicitRole(t *testing.T) {
	env := setup(t)

	req := registerReq("teach@example.com", "teach")
	req.RoleName = model.RoleTeacher
	profile, err := env.service.Register(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.RoleTeacher, profile.Role)
	assert.Contains(t, profile.Permissions, rbac.PermGradeAssignments)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	req := registerReq("weak@example.com", "weak")
	req.Password = "short"
	_, err := env.service.Register(ctx, req)
	require.Error(t, err)
	assert.Equal(t, 400, errors.GetCode(err))
	assert.NotEmpty(t, errors.GetErrors(err))

	// 弱密码请求不触达存储
	stored, err := env.users.FindByEmail(ctx, "weak@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, registerReq("dup@example.com", "dup"))
	require.NoError(t, err)

	_, err = env.service.Register(ctx, registerReq("dup@example.com", "other"))
	require.Error(t, err)
	assert.Equal(t, 409, errors.GetCode(err))
	assert.Contains(t, errors.GetMessage(err), "email")

	_, err = env.service.Register(ctx, registerReq("other@example.com", "dup"))
	require.Error(t, err)
	assert.Equal(t, 409, errors.GetCode(err))
	assert.Contains(t, errors.GetMessage(err), "username")
}

func TestRegisterUnknownRoleLeavesNoUser(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	req := registerReq("norole@example.com", "norole")
	req.RoleName = "principal"
	_, err := env.service.Register(ctx, req)
	require.Error(t, err)
	assert.Equal(t, 400, errors.GetCode(err))

	// 角色校验先于写入，失败后不留下用户记录
	stored, err := env.users.FindByEmail(ctx, "norole@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored)

	// 同一邮箱重试可以正常注册
	req.RoleName = model.RoleTeacher
	_, err = env.service.Register(ctx, req)
	require.NoError(t, err)
}

func TestLoginIssuesVerifiableTokens(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, registerReq("login@example.com", "login"))
	require.NoError(t, err)

	resp, err := env.service.Login(ctx, &auth.LoginRequest{
		Email:    "login@example.com",
		Password: "Abcdef12",
	})
	require.NoError(t, err)

	claims, err := env.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "login", claims.Username)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.Contains(t, claims.Permissions, rbac.PermViewCourses)

	// 可见菜单随用户画像下发
	require.NotEmpty(t, resp.User.Menus)
	menuTitles := make([]string, 0, len(resp.User.Menus))
	for _, m := range resp.User.Menus {
		menuTitles = append(menuTitles, m.Title)
	}
	assert.Contains(t, menuTitles, "Dashboard")
	assert.NotContains(t, menuTitles, "Administration")

	// 最近登录时间被刷新
	stored, err := env.users.FindByEmail(ctx, "login@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginResistsAccountEnumeration(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, registerReq("real@example.com", "real"))
	require.NoError(t, err)

	// 不存在的账号和密码错误返回同一条消息
	_, errUnknown := env.service.Login(ctx, &auth.LoginRequest{
		Email:    "ghost@example.com",
		Password: "Abcdef12",
	})
	_, errWrongPw := env.service.Login(ctx, &auth.LoginRequest{
		Email:    "real@example.com",
		Password: "Wrong1234",
	})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.Equal(t, errors.GetCode(errUnknown), errors.GetCode(errWrongPw))
	assert.Equal(t, errors.GetMessage(errUnknown), errors.GetMessage(errWrongPw))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	profile, err := env.service.Register(ctx, registerReq("off@example.com", "off"))
	require.NoError(t, err)
	require.NoError(t, env.users.UpdateStatus(ctx, profile.ID, model.UserStatusDisabled))

	// 密码正确才提示账号停用
	_, err = env.service.Login(ctx, &auth.LoginRequest{
		Email:    "off@example.com",
		Password: "Abcdef12",
	})
	require.Error(t, err)
	assert.Equal(t, errors.GetMessage(errors.ErrAccountDisabled), errors.GetMessage(err))

	// 密码错误时不泄露停用状态
	_, err = env.service.Login(ctx, &auth.LoginRequest{
		Email:    "off@example.com",
		Password: "Wrong1234",
	})
	require.Error(t, err)
	assert.Equal(t, errors.GetMessage(errors.ErrInvalidCredentials), errors.GetMessage(err))
}

func TestRefreshRederivesLiveAuthorization(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	profile, err := env.service.Register(ctx, registerReq("fresh@example.com", "fresh"))
	require.NoError(t, err)

	resp, err := env.service.Login(ctx, &auth.LoginRequest{
		Email:    "fresh@example.com",
		Password: "Abcdef12",
	})
	require.NoError(t, err)

	oldClaims, err := env.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	require.NotContains(t, oldClaims.Permissions, rbac.PermViewReports)

	// 登录后授予新权限，刷新出的访问令牌立即携带它
	require.NoError(t, env.assigner.GrantPermission(ctx, profile.ID, rbac.PermViewReports, 1))

	refreshed, err := env.service.RefreshTokens(ctx, resp.RefreshToken)
	require.NoError(t, err)
	newClaims, err := env.tokens.VerifyAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Contains(t, newClaims.Permissions, rbac.PermViewReports)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, registerReq("mix@example.com", "mix"))
	require.NoError(t, err)
	resp, err := env.service.Login(ctx, &auth.LoginRequest{
		Email:    "mix@example.com",
		Password: "Abcdef12",
	})
	require.NoError(t, err)

	// 访问令牌的签名密钥不同，不能用于刷新
	_, err = env.service.RefreshTokens(ctx, resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, errors.GetCode(err))
}

func TestRefreshExpiredToken(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.service.Register(ctx, registerReq("late@example.com", "late"))
	require.NoError(t, err)

	// 时钟回拨签发一个已过期的刷新令牌
	env.tokens.Now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }
	resp, err := env.service.Login(ctx, &auth.LoginRequest{
		Email:    "late@example.com",
		Password: "Abcdef12",
	})
	require.NoError(t, err)
	env.tokens.Now = time.Now

	_, err = env.service.RefreshTokens(ctx, resp.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, errors.GetMessage(errors.ErrTokenExpired), errors.GetMessage(err))
}

func TestRefreshDeactivatedAccount(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	profile, err := env.service.Register(ctx, registerReq("gone@example.com", "gone"))
	require.NoError(t, err)
	resp, err := env.service.Login(ctx, &auth.LoginRequest{
		Email:    "gone@example.com",
		Password: "Abcdef12",
	})
	require.NoError(t, err)

	require.NoError(t, env.users.UpdateStatus(ctx, profile.ID, model.UserStatusDisabled))

	_, err = env.service.RefreshTokens(ctx, resp.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, 401, errors.GetCode(err))
}

func TestProfileResolvesLivePermissions(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	profile, err := env.service.Register(ctx, registerReq("prof@example.com", "prof"))
	require.NoError(t, err)

	require.NoError(t, env.assigner.GrantPermission(ctx, profile.ID, rbac.PermViewReports, 1))

	got, err := env.service.Profile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "prof@example.com", got.Email)
	assert.Equal(t, model.RoleStudent, got.Role)
	assert.Contains(t, got.Permissions, rbac.PermViewReports)
}
