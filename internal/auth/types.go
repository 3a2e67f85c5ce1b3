package auth

import (
	"time"

	"github.com/eduback/internal/model"
	pkgauth "github.com/eduback/pkg/auth"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
	Nickname string `json:"nickname" validate:"omitempty,max=50"`
	RoleName string `json:"roleName" validate:"omitempty,oneof=admin teacher student"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserProfile 用户画像，聚合角色与实时解析的权限集
// 登录/刷新响应里还携带可见菜单树
type UserProfile struct {
	ID          int64         `json:"id"`
	Email       string        `json:"email"`
	Username    string        `json:"username"`
	Nickname    string        `json:"nickname"`
	Role        string        `json:"role"`
	Permissions []string      `json:"permissions"`
	Menus       []*model.Menu `json:"menus,omitempty"`
	Status      int8          `json:"status"`
	LastLoginAt *time.Time    `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// LoginResponse 登录/刷新响应，令牌对平铺在顶层
type LoginResponse struct {
	*pkgauth.TokenPair
	User *UserProfile `json:"user"`
}

// newProfile 从用户实体组装画像
func newProfile(u *model.User, role string, perms []string) *UserProfile {
	return &UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Role:        role,
		Permissions: perms,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
