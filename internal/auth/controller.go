package auth

import (
	"github.com/eduback/pkg/middleware"
	"github.com/eduback/pkg/response"
	"github.com/eduback/pkg/validate"
	"github.com/gofiber/fiber/v2"
)

// Controller 认证HTTP控制器
type Controller struct {
	service *Service
}

// NewController 创建认证控制器
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// RegisterRoutes 注册认证路由，/auth/profile 要求认证
func (ctl *Controller) RegisterRoutes(r fiber.Router, jwtAuth fiber.Handler) {
	g := r.Group("/auth")
	g.Post("/register", ctl.Register)
	g.Post("/login", ctl.Login)
	g.Post("/refresh", ctl.Refresh)
	g.Get("/profile", jwtAuth, ctl.Profile)
}

// Register 注册
func (ctl *Controller) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	profile, err := ctl.service.Register(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "user registered", profile)
}

// Login 登录
func (ctl *Controller) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	resp, err := ctl.service.Login(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, resp)
}

// Refresh 刷新令牌
func (ctl *Controller) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if errs := validate.Struct(&req); len(errs) > 0 {
		return response.ValidateError(c, errs)
	}

	resp, err := ctl.service.RefreshTokens(c.UserContext(), req.RefreshToken)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, resp)
}

// Profile 获取当前用户画像
func (ctl *Controller) Profile(c *fiber.Ctx) error {
	profile, err := ctl.service.Profile(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, profile)
}
