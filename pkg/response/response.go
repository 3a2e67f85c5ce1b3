package response

import (
	"net/http"

	"github.com/eduback/pkg/errors"
	"github.com/gofiber/fiber/v2"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Success  bool        `json:"success"`
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// 响应码定义
const (
	CodeSuccess = 0
	CodeError   = 1
)

// Success 成功响应
func Success(c *fiber.Ctx, data interface{}) error {
	return SuccessWithMessage(c, "success", data)
}

// SuccessWithMessage 成功响应(带消息)
func SuccessWithMessage(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(http.StatusOK).JSON(Response{
		Success: true,
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(http.StatusCreated).JSON(Response{
		Success: true,
		Code:    CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessPage 分页成功响应
func SuccessPage(c *fiber.Ctx, data interface{}, total int64, page, pageSize int) error {
	return c.Status(http.StatusOK).JSON(PageResponse{
		Success:  true,
		Code:     CodeSuccess,
		Message:  "success",
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Error 错误响应，错误码与HTTP状态码对齐
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(httpStatus(code)).JSON(Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// FromError 根据应用错误生成响应
func FromError(c *fiber.Ctx, err error) error {
	code := errors.GetCode(err)
	return c.Status(httpStatus(code)).JSON(Response{
		Success: false,
		Code:    code,
		Message: errors.GetMessage(err),
		Errors:  errors.GetErrors(err),
	})
}

// httpStatus 错误码到HTTP状态码的映射
func httpStatus(code int) int {
	if code >= 400 && code < 600 {
		return code
	}
	return http.StatusInternalServerError
}

// BadRequest 请求错误
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// Unauthorized 未授权
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "unauthorized"
	}
	return Error(c, http.StatusUnauthorized, message)
}

// Forbidden 禁止访问
func Forbidden(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "forbidden"
	}
	return Error(c, http.StatusForbidden, message)
}

// NotFound 未找到
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "not found"
	}
	return Error(c, http.StatusNotFound, message)
}

// ValidateError 验证错误，携带逐项明细
func ValidateError(c *fiber.Ctx, errs []string) error {
	return c.Status(http.StatusBadRequest).JSON(Response{
		Success: false,
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Errors:  errs,
	})
}

// ServerError 服务器错误
func ServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "internal server error"
	}
	return Error(c, http.StatusInternalServerError, message)
}
