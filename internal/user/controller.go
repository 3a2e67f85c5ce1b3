package user

import (
	"strconv"

	"github.com/eduback/internal/model"
	"github.com/eduback/internal/rbac"
	"github.com/eduback/pkg/errors"
	"github.com/eduback/pkg/middleware"
	"github.com/eduback/pkg/response"
	"github.com/eduback/pkg/validate"
	"github.com/gofiber/fiber/v2"
)

// Controller 用户管理HTTP控制器
type Controller struct {
	repo     Repository
	resolver *rbac.Resolver
}

// NewController 创建用户控制器
func NewController(repo Repository, resolver *rbac.Resolver) *Controller {
	return &Controller{repo: repo, resolver: resolver}
}

// RegisterRoutes 注册用户管理路由，整组要求 MANAGE_USERS 权限
func (ctl *Controller) RegisterRoutes(r fiber.Router, jwtAuth fiber.Handler) {
	g := r.Group("/users", jwtAuth,
		middleware.RequirePermissions(ctl.resolver, true, rbac.PermManageUsers))
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)
	g.Put("/:id", ctl.Update)
	g.Put("/:id/status", ctl.ChangeStatus)
	g.Delete("/:id", ctl.Deactivate)
}

// List 分页检索用户
func (ctl *Controller) List(c *fiber.Ctx) error {
	var q ListQuery
	if err := c.QueryParser(&q); err != nil {
		return response.BadRequest(c, "invalid query parameters")
	}
	result, err := ctl.repo.Search(c.UserContext(), &q)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// Get 获取用户详情(带角色)
func (ctl *Controller) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	u, err := ctl.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if u == nil {
		return response.FromError(c, errors.NotFound("user"))
	}
	return response.Success(c, u)
}

// Update 更新用户资料
func (ctl *Controller) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	u, err := ctl.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if u == nil {
		return response.FromError(c, errors.NotFound("user"))
	}

	if req.Nickname != nil {
		u.Nickname = *req.Nickname
	}
	if req.Email != nil && *req.Email != u.Email {
		existing, err := ctl.repo.FindByEmail(c.UserContext(), *req.Email)
		if err != nil {
			return response.FromError(c, err)
		}
		if existing != nil {
			return response.FromError(c, errors.Duplicate("email"))
		}
		u.Email = *req.Email
	}

	if err := ctl.repo.Update(c.UserContext(), u); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, u)
}

// ChangeStatus 启用/停用账号
func (ctl *Controller) ChangeStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	var req ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	if err := ctl.changeStatus(c, id, req.Status); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "user status updated", nil)
}

// Deactivate 停用账号(软删除)
func (ctl *Controller) Deactivate(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid user id")
	}
	if err := ctl.changeStatus(c, id, model.UserStatusDisabled); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "user deactivated", nil)
}

// changeStatus 变更状态并失效权限缓存，管理员不能停用自己
func (ctl *Controller) changeStatus(c *fiber.Ctx, id int64, status int8) error {
	if status == model.UserStatusDisabled && id == middleware.GetUserID(c) {
		return errors.BadRequest("cannot deactivate your own account")
	}

	u, err := ctl.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if u == nil {
		return errors.NotFound("user")
	}

	if err := ctl.repo.UpdateStatus(c.UserContext(), id, status); err != nil {
		return err
	}
	ctl.resolver.Invalidate(c.UserContext(), id)
	return nil
}
