package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPermissionsForRole(t *testing.T) {
	assert.Equal(t, []string{PermItemsRead, PermItemsWrite}, PermissionsForRole(RoleUser))
	assert.Contains(t, PermissionsForRole(RoleModerator), PermItemsDelete)
	assert.Contains(t, PermissionsForRole(RoleAdmin), PermAdminAccess)
	assert.Contains(t, PermissionsForRole(RoleSuperAdmin), PermAdminManage)
	assert.Empty(t, PermissionsForRole("unknown"))
}

func TestUser_Deleted(t *testing.T) {
	assert.False(t, User{}.Deleted())

	now := time.Now()
	assert.True(t, User{DeletedAt: &now}.Deleted())
}
