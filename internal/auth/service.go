package auth

import (
	"context"

	"github.com/eduback/internal/menu"
	"github.com/eduback/internal/model"
	"github.com/eduback/internal/rbac"
	"github.com/eduback/internal/user"
	pkgauth "github.com/eduback/pkg/auth"
	"github.com/eduback/pkg/errors"
	"github.com/eduback/pkg/logger"
	"go.uber.org/zap"
)

// Service 认证服务，编排注册/登录/刷新/画像四条流程
type Service struct {
	users     user.Repository
	resolver  *rbac.Resolver
	assigner  *rbac.Assigner
	menus     *menu.Service
	tokens    *pkgauth.TokenManager
	refresher *pkgauth.TokenRefresher[*LoginResponse]
}

// NewService 创建认证服务
func NewService(users user.Repository, resolver *rbac.Resolver, assigner *rbac.Assigner, menus *menu.Service, tokens *pkgauth.TokenManager) *Service {
	s := &Service{
		users:    users,
		resolver: resolver,
		assigner: assigner,
		menus:    menus,
		tokens:   tokens,
	}
	s.refresher = pkgauth.NewTokenRefresher(s.refreshTokens)
	return s
}

// Register 注册用户
// 密码强度与角色存在性先于任何写入检查，失败的请求不留下用户记录；
// 注册即分配角色(缺省 student)并种入默认菜单授权
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*UserProfile, error) {
	if result := pkgauth.ValidateStrength(req.Password); !result.IsValid {
		return nil, errors.Validation(result.Errors)
	}

	roleName := req.RoleName
	if roleName == "" {
		roleName = rbac.DefaultRole
	}
	if err := s.assigner.EnsureRole(ctx, roleName); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Duplicate("email")
	}

	existing, err = s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Duplicate("username")
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, 500, "failed to process password")
	}

	u := &model.User{
		Email:    req.Email,
		Username: req.Username,
		Password: hash,
		Nickname: req.Nickname,
		Status:   model.UserStatusActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.assigner.AssignRole(ctx, u.ID, roleName, u.ID); err != nil {
		return nil, err
	}

	perms, err := s.resolver.Resolve(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("user registered",
		zap.Int64("userId", u.ID),
		zap.String("role", roleName))

	return newProfile(u, roleName, perms), nil
}

// Login 登录
// 用户不存在和密码错误返回同一条消息，防止账号枚举；
// 账号停用的提示只在密码验证通过之后给出
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrInvalidCredentials
	}
	if !pkgauth.CheckPassword(req.Password, u.Password) {
		return nil, errors.ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, errors.ErrAccountDisabled
	}

	resp, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		logger.Warn("failed to update last login time",
			zap.Int64("userId", u.ID), zap.Error(err))
	}

	return resp, nil
}

// RefreshTokens 刷新令牌
// 同一刷新令牌的并发请求单飞合并，解析与签发只执行一次
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	return s.refresher.Refresh(ctx, refreshToken)
}

// refreshTokens 执行一次真正的刷新
// 角色和权限从存储重新解析后写入新的访问令牌，
// 刷新窗口内发生的授权变更会立即反映到新令牌里
func (s *Service) refreshTokens(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		if err == pkgauth.ErrTokenExpired {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenInvalid
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrTokenInvalid
	}
	if !u.IsActive() {
		return nil, errors.ErrAccountDisabled
	}

	return s.issueTokens(ctx, u)
}

// Profile 获取用户画像，权限集实时解析
func (s *Service) Profile(ctx context.Context, userID int64) (*UserProfile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.NotFound("user")
	}

	role, err := s.resolver.GetUserRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	return newProfile(u, role, perms), nil
}

// issueTokens 实时解析角色、权限与可见菜单并签发令牌对
func (s *Service) issueTokens(ctx context.Context, u *model.User) (*LoginResponse, error) {
	role, err := s.resolver.GetUserRole(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	perms, err := s.resolver.Resolve(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	menus, err := s.menus.ResolveForPermissions(ctx, perms)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.GenerateTokens(&pkgauth.TokenPayload{
		UserID:      u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        role,
		Permissions: perms,
	})
	if err != nil {
		return nil, errors.Wrap(err, 500, "failed to generate tokens")
	}

	profile := newProfile(u, role, perms)
	profile.Menus = menus

	return &LoginResponse{
		TokenPair: pair,
		User:      profile,
	}, nil
}
