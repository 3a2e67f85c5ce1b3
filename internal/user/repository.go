package user

import (
	"context"

	"github.com/eduback/internal/model"
	"github.com/eduback/pkg/dal"
	"gorm.io/gorm"
)

// Repository 用户仓储接口
type Repository interface {
	dal.Repository[model.User]
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	UpdateStatus(ctx context.Context, userID int64, status int8) error
	Search(ctx context.Context, q *ListQuery) (*dal.PagedResult[model.User], error)
}

// repository 用户仓储实现
type repository struct {
	*dal.BaseRepository[model.User]
}

// NewRepository 创建用户仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		BaseRepository: dal.NewBaseRepository[model.User](db),
	}
}

// FindByEmail 按邮箱查找用户，不存在时返回 nil
func (r *repository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.FindOne(ctx, map[string]interface{}{"email": email})
}

// FindByUsername 按用户名查找用户，不存在时返回 nil
func (r *repository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.FindOne(ctx, map[string]interface{}{"username": username})
}

// UpdateLastLogin 刷新最近登录时间
func (r *repository) UpdateLastLogin(ctx context.Context, userID int64) error {
	return r.DB().WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// UpdateStatus 变更账号状态
func (r *repository) UpdateStatus(ctx context.Context, userID int64, status int8) error {
	return r.UpdateFields(ctx, userID, map[string]interface{}{"status": status})
}

// Search 分页检索用户，关键字匹配邮箱/用户名/昵称
func (r *repository) Search(ctx context.Context, q *ListQuery) (*dal.PagedResult[model.User], error) {
	db := r.DB().WithContext(ctx).Model(&model.User{})
	if q.Keyword != "" {
		like := "%" + q.Keyword + "%"
		db = db.Where("email LIKE ? OR username LIKE ? OR nickname LIKE ?", like, like, like)
	}
	if q.Status != 0 {
		db = db.Where("status = ?", q.Status)
	}

	p := dal.NewPagination(q.Page, q.PageSize)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []model.User
	if err := db.Order("id ASC").Offset(p.Offset()).Limit(p.PageSize).Find(&users).Error; err != nil {
		return nil, err
	}

	return dal.NewPagedResult(users, total, p), nil
}
