package bootstrap

import (
	"github.com/eduback/internal/model"
	"github.com/eduback/internal/rbac"
	"github.com/eduback/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate 建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.UserRole{},
		&model.UserPermission{},
		&model.Menu{},
	)
}

// Seed 写入静态参考数据，幂等，可在每次启动时执行
func Seed(db *gorm.DB) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedPermissions(db); err != nil {
		return err
	}
	if err := seedRolePermissions(db); err != nil {
		return err
	}
	return seedMenus(db)
}

// roleCatalog 内置角色
var roleCatalog = []model.Role{
	{Name: model.RoleAdmin, Description: "platform administrator", Status: 1},
	{Name: model.RoleTeacher, Description: "course instructor", Status: 1},
	{Name: model.RoleStudent, Description: "enrolled learner", Status: 1},
}

// permissionCatalog 全量权限定义，Name 是稳定标识
var permissionCatalog = []model.Permission{
	{Name: rbac.PermViewProfile, Description: "view own profile", Resource: "profile", Action: "read"},
	{Name: rbac.PermUpdateProfile, Description: "update own profile", Resource: "profile", Action: "update"},
	{Name: rbac.PermViewCourses, Description: "browse courses", Resource: "course", Action: "read"},
	{Name: rbac.PermEnrollCourse, Description: "enroll in a course", Resource: "course", Action: "enroll"},
	{Name: rbac.PermViewAssignments, Description: "view assignments", Resource: "assignment", Action: "read"},
	{Name: rbac.PermSubmitAssignment, Description: "submit assignment work", Resource: "assignment", Action: "submit"},
	{Name: rbac.PermViewGrades, Description: "view own grades", Resource: "grade", Action: "read"},
	{Name: rbac.PermViewAnnouncements, Description: "view announcements", Resource: "announcement", Action: "read"},

	{Name: rbac.PermCreateCourse, Description: "create courses", Resource: "course", Action: "create"},
	{Name: rbac.PermUpdateCourse, Description: "update courses", Resource: "course", Action: "update"},
	{Name: rbac.PermDeleteCourse, Description: "delete courses", Resource: "course", Action: "delete"},
	{Name: rbac.PermManageAssignments, Description: "manage assignments", Resource: "assignment", Action: "manage"},
	{Name: rbac.PermGradeAssignments, Description: "grade submitted work", Resource: "assignment", Action: "grade"},
	{Name: rbac.PermViewStudents, Description: "view enrolled students", Resource: "student", Action: "read"},
	{Name: rbac.PermManageAnnouncements, Description: "manage announcements", Resource: "announcement", Action: "manage"},
	{Name: rbac.PermViewReports, Description: "view own course reports", Resource: "report", Action: "read"},

	{Name: rbac.PermManageUsers, Description: "manage platform users", Resource: "user", Action: "manage"},
	{Name: rbac.PermManageRoles, Description: "manage roles", Resource: "role", Action: "manage"},
	{Name: rbac.PermManagePermissions, Description: "manage permission grants", Resource: "permission", Action: "manage"},
	{Name: rbac.PermManageCourses, Description: "manage all courses", Resource: "course", Action: "manage"},
	{Name: rbac.PermViewAllReports, Description: "view platform-wide reports", Resource: "report", Action: "read-all"},
	{Name: rbac.PermManageSystemSettings, Description: "manage system settings", Resource: "settings", Action: "manage"},
	{Name: rbac.PermBackupSystem, Description: "trigger system backups", Resource: "system", Action: "backup"},

	{Name: rbac.PermMenuDashboard, Description: "dashboard menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuCourses, Description: "courses menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuAssignments, Description: "assignments menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuGrades, Description: "grades menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuAnnouncements, Description: "announcements menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuUsers, Description: "user management menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuRoles, Description: "role management menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuSettings, Description: "settings menu entry", Resource: "menu", Action: "view"},
	{Name: rbac.PermMenuReports, Description: "reports menu entry", Resource: "menu", Action: "view"},
}

// seedRoles 写入内置角色，已存在的跳过
func seedRoles(db *gorm.DB) error {
	for _, role := range roleCatalog {
		var count int64
		if err := db.Model(&model.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedPermissions 写入权限定义，已存在的跳过
func seedPermissions(db *gorm.DB) error {
	for _, perm := range permissionCatalog {
		var count int64
		if err := db.Model(&model.Permission{}).Where("name = ?", perm.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		perm.Status = 1
		if err := db.Create(&perm).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedRolePermissions 按角色默认权限集写入关联，已存在的跳过
func seedRolePermissions(db *gorm.DB) error {
	for roleName, permNames := range rbac.DefaultRolePermissions {
		var role model.Role
		if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
			return err
		}

		var perms []model.Permission
		if err := db.Where("name IN ?", permNames).Find(&perms).Error; err != nil {
			return err
		}
		if len(perms) != len(permNames) {
			logger.Warn("some default permissions missing from catalog",
				zap.String("role", roleName),
				zap.Int("expected", len(permNames)),
				zap.Int("found", len(perms)))
		}

		for _, perm := range perms {
			var count int64
			if err := db.Model(&model.RolePermission{}).
				Where("role_id = ? AND permission_id = ?", role.ID, perm.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := db.Create(&model.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// menuSeed 菜单种子定义，Children 描述层级
type menuSeed struct {
	Title     string
	Route     string
	Component string
	Icon      string
	PermKey   string
	SortOrder int
	Children  []menuSeed
}

// menuCatalog 初始菜单树
var menuCatalog = []menuSeed{
	{Title: "Dashboard", Route: "/dashboard", Component: "Dashboard", Icon: "dashboard", PermKey: rbac.PermMenuDashboard, SortOrder: 1},
	{Title: "Courses", Route: "/courses", Component: "CourseList", Icon: "book", PermKey: rbac.PermMenuCourses, SortOrder: 2},
	{Title: "Assignments", Route: "/assignments", Component: "AssignmentList", Icon: "edit", PermKey: rbac.PermMenuAssignments, SortOrder: 3},
	{Title: "Grades", Route: "/grades", Component: "GradeList", Icon: "chart", PermKey: rbac.PermMenuGrades, SortOrder: 4},
	{Title: "Announcements", Route: "/announcements", Component: "AnnouncementList", Icon: "bell", PermKey: rbac.PermMenuAnnouncements, SortOrder: 5},
	{Title: "Administration", Route: "/admin", Icon: "setting", PermKey: rbac.PermMenuSettings, SortOrder: 6, Children: []menuSeed{
		{Title: "Users", Route: "/admin/users", Component: "UserManagement", Icon: "user", PermKey: rbac.PermMenuUsers, SortOrder: 1},
		{Title: "Roles", Route: "/admin/roles", Component: "RoleManagement", Icon: "team", PermKey: rbac.PermMenuRoles, SortOrder: 2},
		{Title: "Settings", Route: "/admin/settings", Component: "SystemSettings", Icon: "tool", PermKey: rbac.PermMenuSettings, SortOrder: 3},
	}},
	{Title: "Reports", Route: "/reports", Component: "ReportCenter", Icon: "file", PermKey: rbac.PermMenuReports, SortOrder: 7},
}

// seedMenus 写入初始菜单树，表非空时整体跳过
func seedMenus(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Menu{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return createMenus(db, menuCatalog, 0)
}

func createMenus(db *gorm.DB, seeds []menuSeed, parentID int64) error {
	for _, seed := range seeds {
		m := model.Menu{
			ParentID:  parentID,
			Title:     seed.Title,
			Route:     seed.Route,
			Component: seed.Component,
			Icon:      seed.Icon,
			PermKey:   seed.PermKey,
			SortOrder: seed.SortOrder,
			Status:    model.MenuStatusActive,
		}
		if err := db.Create(&m).Error; err != nil {
			return err
		}
		if err := createMenus(db, seed.Children, m.ID); err != nil {
			return err
		}
	}
	return nil
}
