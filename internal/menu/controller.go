package menu

import (
	"strconv"

	"github.com/eduback/internal/rbac"
	"github.com/eduback/pkg/middleware"
	"github.com/eduback/pkg/response"
	"github.com/eduback/pkg/validate"
	"github.com/gofiber/fiber/v2"
)

// Controller 菜单HTTP控制器
type Controller struct {
	service *Service
}

// NewController 创建菜单控制器
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// RegisterRoutes 注册菜单路由
// /menus/user 仅要求认证；管理端CRUD要求 MENU_SETTINGS 权限
func (ctl *Controller) RegisterRoutes(r fiber.Router, jwtAuth fiber.Handler, resolver *rbac.Resolver) {
	r.Get("/menus/user", jwtAuth, ctl.UserTree)

	admin := r.Group("/menus", jwtAuth,
		middleware.RequirePermissions(resolver, true, rbac.PermMenuSettings))
	admin.Get("/", ctl.FullTree)
	admin.Post("/", ctl.Create)
	admin.Get("/:id", ctl.Get)
	admin.Put("/:id", ctl.Update)
	admin.Delete("/:id", ctl.Delete)
}

// UserTree 获取当前用户可见的菜单树
func (ctl *Controller) UserTree(c *fiber.Ctx) error {
	tree, err := ctl.service.ResolveForUser(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, tree)
}

// FullTree 获取完整菜单树(含停用节点)
func (ctl *Controller) FullTree(c *fiber.Ctx) error {
	tree, err := ctl.service.FullTree(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, tree)
}

// Get 获取菜单详情
func (ctl *Controller) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid menu id")
	}
	m, err := ctl.service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, m)
}

// Create 创建菜单
func (ctl *Controller) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	m, err := ctl.service.Create(c.UserContext(), &req, middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "menu created", m)
}

// Update 更新菜单
func (ctl *Controller) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid menu id")
	}
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	m, err := ctl.service.Update(c.UserContext(), id, &req, middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, m)
}

// Delete 停用菜单(软删除)
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.BadRequest(c, "invalid menu id")
	}
	if err := ctl.service.Delete(c.UserContext(), id, middleware.GetUserID(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "menu disabled", nil)
}
