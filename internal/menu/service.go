package menu

import (
	"context"

	"github.com/eduback/internal/model"
	"github.com/eduback/internal/rbac"
	"github.com/eduback/pkg/errors"
)

// Service 菜单解析引擎
// 可见性规则：菜单对用户可见，当且仅当用户的权限集包含菜单的权限标识
// (或菜单未声明权限要求)，且菜单及其全部祖先均处于启用状态。
// 每个节点只对照自身的权限标识检查，子菜单可见不要求父菜单的权限检查通过。
type Service struct {
	repo         Repository
	resolver     *rbac.Resolver
	orphanPolicy string
}

// NewService 创建菜单服务
func NewService(repo Repository, resolver *rbac.Resolver, orphanPolicy string) *Service {
	if orphanPolicy != OrphanDrop {
		orphanPolicy = OrphanPromote
	}
	return &Service{
		repo:         repo,
		resolver:     resolver,
		orphanPolicy: orphanPolicy,
	}
}

// ResolveForUser 计算用户可见的菜单树
// 授权未变化时两次解析得到完全一致的有序树
func (s *Service) ResolveForUser(ctx context.Context, userID int64) ([]*model.Menu, error) {
	perms, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ResolveForPermissions(ctx, perms)
}

// ResolveForPermissions 针对给定权限集计算可见菜单树
func (s *Service) ResolveForPermissions(ctx context.Context, perms []string) ([]*model.Menu, error) {
	menus, err := s.repo.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}

	permSet := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		permSet[p] = struct{}{}
	}

	byID := make(map[int64]*model.Menu, len(menus))
	for i := range menus {
		byID[menus[i].ID] = &menus[i]
	}

	// 停用的菜单连同整棵子树递归排除
	activeLine := make(map[int64]bool, len(menus))
	var isActiveLine func(m *model.Menu) bool
	isActiveLine = func(m *model.Menu) bool {
		if v, ok := activeLine[m.ID]; ok {
			return v
		}
		ok := m.IsActive()
		if ok && m.ParentID != 0 {
			parent, exists := byID[m.ParentID]
			// 父节点缺失视为根
			if exists {
				ok = isActiveLine(parent)
			}
		}
		activeLine[m.ID] = ok
		return ok
	}

	// 权限过滤：空标识的菜单对所有人可见
	visible := make(map[int64]bool, len(menus))
	for i := range menus {
		m := &menus[i]
		if !isActiveLine(m) {
			continue
		}
		if m.PermKey == "" {
			visible[m.ID] = true
			continue
		}
		if _, ok := permSet[m.PermKey]; ok {
			visible[m.ID] = true
		}
	}

	// included 决定节点最终是否进入结果树：
	// 父节点可见则跟随父节点；父节点因权限被隐藏时按孤儿策略处理
	included := make(map[int64]bool, len(visible))
	var isIncluded func(m *model.Menu) bool
	isIncluded = func(m *model.Menu) bool {
		if v, ok := included[m.ID]; ok {
			return v
		}
		ok := visible[m.ID]
		if ok && m.ParentID != 0 {
			if parent, exists := byID[m.ParentID]; exists {
				if visible[parent.ID] {
					ok = isIncluded(parent)
				} else if s.orphanPolicy == OrphanDrop {
					ok = false
				}
				// promote 策略下保持可见，节点提升为根
			}
		}
		included[m.ID] = ok
		return ok
	}

	// 先物化全部入选节点，再按仓储返回的顺序(sort_order, id)挂接，
	// 兄弟顺序稳定，解析幂等
	nodes := make(map[int64]*model.Menu, len(visible))
	for i := range menus {
		if isIncluded(&menus[i]) {
			node := menus[i]
			node.Children = nil
			nodes[node.ID] = &node
		}
	}

	var roots []*model.Menu
	for i := range menus {
		node, ok := nodes[menus[i].ID]
		if !ok {
			continue
		}
		if parent, ok := nodes[node.ParentID]; ok && node.ParentID != 0 {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	return roots, nil
}

// Get 获取菜单详情
func (s *Service) Get(ctx context.Context, id int64) (*model.Menu, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NotFound("menu")
	}
	return m, nil
}

// FullTree 获取完整菜单树(含停用节点)，供管理端使用
func (s *Service) FullTree(ctx context.Context) ([]*model.Menu, error) {
	menus, err := s.repo.FindAllOrdered(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*model.Menu, len(menus))
	var roots []*model.Menu
	for i := range menus {
		node := menus[i]
		node.Children = nil
		nodes[node.ID] = &node

		if p, ok := nodes[node.ParentID]; ok && node.ParentID != 0 {
			p.Children = append(p.Children, &node)
		} else {
			roots = append(roots, &node)
		}
	}
	return roots, nil
}

// Create 创建菜单
func (s *Service) Create(ctx context.Context, req *CreateRequest, createdBy int64) (*model.Menu, error) {
	if req.ParentID != 0 {
		parent, err := s.repo.FindByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, errors.NotFound("parent menu")
		}
	}

	m := &model.Menu{
		ParentID:  req.ParentID,
		Title:     req.Title,
		Route:     req.Route,
		Component: req.Component,
		Icon:      req.Icon,
		PermKey:   req.PermKey,
		SortOrder: req.SortOrder,
		Status:    model.MenuStatusActive,
	}
	if m.SortOrder == 0 {
		m.SortOrder = 1
	}
	m.CreatedBy = createdBy
	m.UpdatedBy = createdBy

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update 更新菜单的可变字段并记录操作人
func (s *Service) Update(ctx context.Context, id int64, req *UpdateRequest, updatedBy int64) (*model.Menu, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NotFound("menu")
	}

	if req.ParentID != nil {
		m.ParentID = *req.ParentID
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Route != nil {
		m.Route = *req.Route
	}
	if req.Component != nil {
		m.Component = *req.Component
	}
	if req.Icon != nil {
		m.Icon = *req.Icon
	}
	if req.PermKey != nil {
		m.PermKey = *req.PermKey
	}
	if req.SortOrder != nil {
		m.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	m.UpdatedBy = updatedBy

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete 软删除：翻转启用状态，子树随之从解析结果中消失
func (s *Service) Delete(ctx context.Context, id int64, updatedBy int64) error {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.NotFound("menu")
	}

	return s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"status":     model.MenuStatusDisabled,
		"updated_by": updatedBy,
	})
}
