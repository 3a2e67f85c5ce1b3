package middleware

import (
	"context"

	"github.com/eduback/pkg/auth"
	"github.com/eduback/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// PermissionChecker 授权数据源，由权限解析引擎实现
type PermissionChecker interface {
	GetUserRole(ctx context.Context, userID int64) (string, error)
	HasAny(ctx context.Context, userID int64, keys []string) (bool, error)
	HasAll(ctx context.Context, userID int64, keys []string) (bool, error)
}

// JWTAuth JWT认证中间件
// 提取→验证→放行三段式；过期与无效返回不同的提示，
// 客户端据此决定走刷新流程还是重新登录
func JWTAuth(tm *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.ExtractBearer(c.Get("Authorization"))
		if token == "" {
			return response.Unauthorized(c, "authentication token required")
		}

		claims, err := tm.VerifyAccessToken(token)
		if err != nil {
			if err == auth.ErrTokenExpired {
				return response.Unauthorized(c, "token has expired")
			}
			return response.Unauthorized(c, "token is invalid")
		}

		// 将用户信息存入上下文
		c.Locals("userId", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// RequireRoles 角色检查中间件，持有任意一个列出的角色即放行
// 角色从存储实时解析，令牌里的快照只用于展示
func RequireRoles(checker PermissionChecker, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return response.Unauthorized(c, "authentication token required")
		}

		role, err := checker.GetUserRole(c.UserContext(), userID)
		if err != nil {
			return response.FromError(c, err)
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "insufficient role")
	}
}

// RequirePermissions 权限检查中间件
// requireAll 为真时要求持有全部列出的权限，否则任意一个即可。
// 拒绝响应只说明未通过的是权限类检查，不回显被检查的权限标识
func RequirePermissions(checker PermissionChecker, requireAll bool, keys ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return response.Unauthorized(c, "authentication token required")
		}

		var (
			ok  bool
			err error
		)
		if requireAll {
			ok, err = checker.HasAll(c.UserContext(), userID, keys)
		} else {
			ok, err = checker.HasAny(c.UserContext(), userID, keys)
		}
		if err != nil {
			return response.FromError(c, err)
		}
		if !ok {
			return response.Forbidden(c, "missing required permission")
		}

		return c.Next()
	}
}
