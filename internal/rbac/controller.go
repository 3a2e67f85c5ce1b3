package rbac

import (
	"strconv"

	"github.com/eduback/pkg/middleware"
	"github.com/eduback/pkg/response"
	"github.com/eduback/pkg/validate"
	"github.com/gofiber/fiber/v2"
)

// Controller 角色与权限HTTP控制器
type Controller struct {
	repo     Repository
	assigner *Assigner
	resolver *Resolver
}

// NewController 创建RBAC控制器
func NewController(repo Repository, assigner *Assigner, resolver *Resolver) *Controller {
	return &Controller{repo: repo, assigner: assigner, resolver: resolver}
}

// RegisterRoutes 注册RBAC路由
// 角色变更要求 MANAGE_ROLES，直接授权管理要求 MANAGE_PERMISSIONS
func (ctl *Controller) RegisterRoutes(r fiber.Router, jwtAuth fiber.Handler) {
	r.Get("/roles", jwtAuth,
		middleware.RequirePermissions(ctl.resolver, true, PermManageRoles), ctl.ListRoles)
	r.Get("/permissions", jwtAuth,
		middleware.RequirePermissions(ctl.resolver, true, PermManagePermissions), ctl.ListPermissions)

	r.Put("/users/:id/role", jwtAuth,
		middleware.RequirePermissions(ctl.resolver, true, PermManageRoles), ctl.ChangeRole)
	r.Post("/users/:id/permissions", jwtAuth,
		middleware.RequirePermissions(ctl.resolver, true, PermManagePermissions), ctl.GrantPermission)
	r.Delete("/users/:id/permissions/:key", jwtAuth,
		middleware.RequirePermissions(ctl.resolver, true, PermManagePermissions), ctl.RevokePermission)
}

// ListRoles 角色列表
func (ctl *Controller) ListRoles(c *fiber.Ctx) error {
	roles, err := ctl.repo.ListRoles(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, roles)
}

// ListPermissions 权限列表
func (ctl *Controller) ListPermissions(c *fiber.Ctx) error {
	perms, err := ctl.repo.ListPermissions(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, perms)
}

// ChangeRole 变更用户角色
func (ctl *Controller) ChangeRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	var req ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	if err := ctl.assigner.AssignRole(c.UserContext(), userID, req.RoleName, middleware.GetUserID(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "role updated", nil)
}

// GrantPermission 为用户直接授予权限
func (ctl *Controller) GrantPermission(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	var req GrantPermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	if err := ctl.assigner.GrantPermission(c.UserContext(), userID, req.Permission, middleware.GetUserID(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "permission granted", nil)
}

// RevokePermission 撤销用户的直接授权
func (ctl *Controller) RevokePermission(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	key := c.Params("key")
	if key == "" {
		return response.BadRequest(c, "permission key required")
	}

	if err := ctl.assigner.RevokePermission(c.UserContext(), userID, key); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "permission revoked", nil)
}
