package rbac

// 权限标识
const (
	// 学生权限
	PermViewProfile       = "VIEW_PROFILE"
	PermUpdateProfile     = "UPDATE_PROFILE"
	PermViewCourses       = "VIEW_COURSES"
	PermEnrollCourse      = "ENROLL_COURSE"
	PermViewAssignments   = "VIEW_ASSIGNMENTS"
	PermSubmitAssignment  = "SUBMIT_ASSIGNMENT"
	PermViewGrades        = "VIEW_GRADES"
	PermViewAnnouncements = "VIEW_ANNOUNCEMENTS"

	// 教师权限
	PermCreateCourse        = "CREATE_COURSE"
	PermUpdateCourse        = "UPDATE_COURSE"
	PermDeleteCourse        = "DELETE_COURSE"
	PermManageAssignments   = "MANAGE_ASSIGNMENTS"
	PermGradeAssignments    = "GRADE_ASSIGNMENTS"
	PermViewStudents        = "VIEW_STUDENTS"
	PermManageAnnouncements = "MANAGE_ANNOUNCEMENTS"
	PermViewReports         = "VIEW_REPORTS"

	// 管理员权限
	PermManageUsers          = "MANAGE_USERS"
	PermManageRoles          = "MANAGE_ROLES"
	PermManagePermissions    = "MANAGE_PERMISSIONS"
	PermManageCourses        = "MANAGE_COURSES"
	PermViewAllReports       = "VIEW_ALL_REPORTS"
	PermManageSystemSettings = "MANAGE_SYSTEM_SETTINGS"
	PermBackupSystem         = "BACKUP_SYSTEM"

	// 菜单权限
	PermMenuDashboard     = "MENU_DASHBOARD"
	PermMenuCourses       = "MENU_COURSES"
	PermMenuAssignments   = "MENU_ASSIGNMENTS"
	PermMenuGrades        = "MENU_GRADES"
	PermMenuAnnouncements = "MENU_ANNOUNCEMENTS"
	PermMenuUsers         = "MENU_USERS"
	PermMenuRoles         = "MENU_ROLES"
	PermMenuSettings      = "MENU_SETTINGS"
	PermMenuReports       = "MENU_REPORTS"
)

// DefaultRolePermissions 角色的默认权限集
// 通过 sys_role_permission 关联表在线解析，角色默认集变更后立即生效
var DefaultRolePermissions = map[string][]string{
	"student": {
		PermViewProfile,
		PermUpdateProfile,
		PermViewCourses,
		PermEnrollCourse,
		PermViewAssignments,
		PermSubmitAssignment,
		PermViewGrades,
		PermViewAnnouncements,
	},
	"teacher": {
		PermViewProfile,
		PermUpdateProfile,
		PermViewCourses,
		PermCreateCourse,
		PermUpdateCourse,
		PermDeleteCourse,
		PermManageAssignments,
		PermGradeAssignments,
		PermViewStudents,
		PermManageAnnouncements,
		PermViewReports,
	},
	"admin": {
		PermManageUsers,
		PermManageRoles,
		PermManagePermissions,
		PermManageCourses,
		PermManageAssignments,
		PermViewAllReports,
		PermManageSystemSettings,
		PermManageAnnouncements,
		PermBackupSystem,
	},
}

// DefaultRoleMenuKeys 角色到菜单权限标识的静态映射
// 角色分配时作为直接授权一次性种入，使新用户无需额外的管理操作即可看到菜单
var DefaultRoleMenuKeys = map[string][]string{
	"student": {
		PermMenuDashboard,
		PermMenuCourses,
		PermMenuAssignments,
		PermMenuGrades,
		PermMenuAnnouncements,
	},
	"teacher": {
		PermMenuDashboard,
		PermMenuCourses,
		PermMenuAssignments,
		PermMenuAnnouncements,
		PermMenuReports,
	},
	"admin": {
		PermMenuDashboard,
		PermMenuUsers,
		PermMenuRoles,
		PermMenuSettings,
		PermMenuReports,
	},
}

// DefaultRole 注册时未指定角色的缺省值
const DefaultRole = "student"

// GrantPermissionRequest 直接授权请求
type GrantPermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

// ChangeRoleRequest 变更用户角色请求
type ChangeRoleRequest struct {
	RoleName string `json:"roleName" validate:"required,oneof=admin teacher student"`
}
