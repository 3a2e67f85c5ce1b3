package menu

import (
	"context"

	"github.com/eduback/internal/model"
	"github.com/eduback/pkg/dal"
	"gorm.io/gorm"
)

// Repository 菜单仓储接口
type Repository interface {
	dal.Repository[model.Menu]
	// FindAllOrdered 返回全部菜单(含停用)，按 sort_order, id 升序
	FindAllOrdered(ctx context.Context) ([]model.Menu, error)
}

// repository 菜单仓储实现
type repository struct {
	*dal.BaseRepository[model.Menu]
}

// NewRepository 创建菜单仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		BaseRepository: dal.NewBaseRepository[model.Menu](db),
	}
}

// FindAllOrdered 返回全部菜单，排序规则与兄弟节点展示顺序一致
func (r *repository) FindAllOrdered(ctx context.Context) ([]model.Menu, error) {
	return r.FindAll(ctx, nil, dal.WithOrder("sort_order ASC, id ASC"))
}
