// Package rbac role hierarchy and action permissions for content administration
// Package rbac 内容管理的角色层级与操作权限
package rbac

import "strings"

// Role 管理员角色
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Action 受保护的操作
type Action string

const (
	ActionContentView   Action = "content.view"
	ActionContentEdit   Action = "content.edit"
	ActionContentDelete Action = "content.delete"
	ActionBackupRun     Action = "backup.run"
	ActionAdminManage   Action = "admin.manage"
)

var roleLevel = map[Role]int{
	RoleViewer:     1,
	RoleEditor:     2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// minimum role required per action
// 每个操作所需的最低角色
var actionRole = map[Action]Role{
	ActionContentView:   RoleEditor,
	ActionContentEdit:   RoleEditor,
	ActionContentDelete: RoleEditor,
	ActionBackupRun:     RoleAdmin,
	ActionAdminManage:   RoleSuperAdmin,
}

// orderedActions keeps Permissions output stable
var orderedActions = []Action{
	ActionContentView,
	ActionContentEdit,
	ActionContentDelete,
	ActionBackupRun,
	ActionAdminManage,
}

// Normalize maps any string onto a known role. Unknown values become viewer.
// Normalize 将任意字符串映射为已知角色，未知值视为 viewer
func Normalize(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLevel[r]; ok {
		return r
	}
	return RoleViewer
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	_, ok := roleLevel[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

func (r Role) level() int {
	return roleLevel[Normalize(string(r))]
}

// AtLeast reports whether r ranks at or above min
// AtLeast 判断 r 是否不低于 min
func (r Role) AtLeast(min Role) bool {
	return r.level() >= min.level()
}

// Can reports whether the role may perform the action. Unknown actions are denied.
// Can 判断角色是否可执行操作，未知操作一律拒绝
func Can(r Role, a Action) bool {
	min, ok := actionRole[a]
	if !ok {
		return false
	}
	return r.AtLeast(min)
}

// Permissions 返回角色拥有的全部操作
func Permissions(r Role) []Action {
	out := make([]Action, 0, len(orderedActions))
	for _, a := range orderedActions {
		if Can(r, a) {
			out = append(out, a)
		}
	}
	return out
}

// Roles 全部角色，由低到高
func Roles() []Role {
	return []Role{RoleViewer, RoleEditor, RoleAdmin, RoleSuperAdmin}
}
