package rbac

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/eduback/internal/model"
	"github.com/eduback/pkg/database"
	"github.com/eduback/pkg/logger"
	"go.uber.org/zap"
)

// Resolver 权限解析引擎
// 用户的权威权限集 = 角色关联权限 ∪ 直接授权，按权限标识去重。
// 解析结果可选地缓存在Redis里，任何授权变更都会显式失效对应条目，
// 缓存只是部署优化，不是语义的一部分。
type Resolver struct {
	repo  Repository
	cache *database.Cache
	ttl   time.Duration
}

// NewResolver 创建权限解析引擎
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// WithCache 启用权限集缓存
func (r *Resolver) WithCache(cache *database.Cache, ttl time.Duration) *Resolver {
	r.cache = cache
	r.ttl = ttl
	return r
}

// Resolve 解析用户的完整权限集，结果排序去重
func (r *Resolver) Resolve(ctx context.Context, userID int64) ([]string, error) {
	if keys, ok := r.fromCache(ctx, userID); ok {
		return keys, nil
	}

	set := make(map[string]struct{})

	role, err := r.repo.GetUserRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != nil {
		roleKeys, err := r.repo.GetRolePermissionKeys(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		for _, k := range roleKeys {
			set[k] = struct{}{}
		}
	}

	directKeys, err := r.repo.GetUserDirectPermissionKeys(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, k := range directKeys {
		set[k] = struct{}{}
	}

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r.toCache(ctx, userID, keys)
	return keys, nil
}

// HasPermission 检查用户是否持有指定权限
func (r *Resolver) HasPermission(ctx context.Context, userID int64, key string) (bool, error) {
	keys, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

// HasAny 检查用户是否持有任意一个指定权限
func (r *Resolver) HasAny(ctx context.Context, userID int64, required []string) (bool, error) {
	keys, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	held := toSet(keys)
	for _, k := range required {
		if _, ok := held[k]; ok {
			return true, nil
		}
	}
	return false, nil
}

// HasAll 检查用户是否持有全部指定权限
func (r *Resolver) HasAll(ctx context.Context, userID int64, required []string) (bool, error) {
	keys, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	held := toSet(keys)
	for _, k := range required {
		if _, ok := held[k]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// GetUserRole 获取用户当前角色名，无角色时返回空串
func (r *Resolver) GetUserRole(ctx context.Context, userID int64) (string, error) {
	role, err := r.repo.GetUserRole(ctx, userID)
	if err != nil {
		return "", err
	}
	if role == nil {
		return "", nil
	}
	return role.Name, nil
}

// GetUserRoleEntity 获取用户当前角色
func (r *Resolver) GetUserRoleEntity(ctx context.Context, userID int64) (*model.Role, error) {
	return r.repo.GetUserRole(ctx, userID)
}

// Invalidate 使指定用户的缓存权限集失效
func (r *Resolver) Invalidate(ctx context.Context, userID int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, cacheKey(userID)); err != nil {
		logger.Warn("failed to invalidate permission cache",
			zap.Int64("userId", userID), zap.Error(err))
	}
}

// fromCache 读取缓存的权限集
func (r *Resolver) fromCache(ctx context.Context, userID int64) ([]string, bool) {
	if r.cache == nil || r.ttl <= 0 {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, cacheKey(userID))
	if err != nil {
		return nil, false
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, false
	}
	return keys, true
}

// toCache 写入缓存
func (r *Resolver) toCache(ctx context.Context, userID int64, keys []string) {
	if r.cache == nil || r.ttl <= 0 {
		return
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(userID), data, r.ttl); err != nil {
		logger.Warn("failed to cache permission set",
			zap.Int64("userId", userID), zap.Error(err))
	}
}

// cacheKey 权限集缓存键
func cacheKey(userID int64) string {
	return "perms:" + strconv.FormatInt(userID, 10)
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
