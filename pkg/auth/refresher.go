package auth

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// RefreshFunc 执行一次真正的刷新调用
type RefreshFunc[T any] func(ctx context.Context, refreshToken string) (T, error)

// TokenRefresher 刷新调用的单飞协调器
// 同一刷新令牌并发触发的刷新共享同一次在途调用的结果，
// 而不是各自独立地解析授权并签发令牌
type TokenRefresher[T any] struct {
	group   singleflight.Group
	refresh RefreshFunc[T]
}

// NewTokenRefresher 创建刷新协调器
func NewTokenRefresher[T any](fn RefreshFunc[T]) *TokenRefresher[T] {
	return &TokenRefresher[T]{refresh: fn}
}

// Refresh 刷新令牌，并发调用合并为一次在途请求
func (r *TokenRefresher[T]) Refresh(ctx context.Context, refreshToken string) (T, error) {
	v, err, _ := r.group.Do(refreshToken, func() (interface{}, error) {
		return r.refresh(ctx, refreshToken)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
