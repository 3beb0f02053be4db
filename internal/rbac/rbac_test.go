package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"editor", RoleEditor},
		{" Admin ", RoleAdmin},
		{"SUPERADMIN", RoleSuperAdmin},
		{"", RoleViewer},
		{"owner", RoleViewer},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoleOrdering(t *testing.T) {
	roles := Roles()
	for i, lower := range roles {
		for j, higher := range roles {
			if got := higher.AtLeast(lower); got != (j >= i) {
				t.Errorf("%s.AtLeast(%s) = %v", higher, lower, got)
			}
		}
	}
	// 未知角色等同 viewer
	assert.True(t, Role("ghost").AtLeast(RoleViewer))
	assert.False(t, Role("ghost").AtLeast(RoleEditor))
}

func TestCan(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleViewer, ActionContentView, false},
		{RoleViewer, ActionContentEdit, false},
		{RoleEditor, ActionContentView, true},
		{RoleEditor, ActionContentEdit, true},
		{RoleEditor, ActionContentDelete, true},
		{RoleEditor, ActionBackupRun, false},
		{RoleAdmin, ActionBackupRun, true},
		{RoleAdmin, ActionAdminManage, false},
		{RoleSuperAdmin, ActionAdminManage, true},
		{RoleSuperAdmin, Action("unknown"), false},
	}
	for _, tt := range tests {
		if got := Can(tt.role, tt.action); got != tt.want {
			t.Errorf("Can(%s, %s) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestPermissions(t *testing.T) {
	assert.Empty(t, Permissions(RoleViewer))
	assert.Equal(t, []Action{ActionContentView, ActionContentEdit, ActionContentDelete}, Permissions(RoleEditor))
	assert.Len(t, Permissions(RoleSuperAdmin), 5)
}
