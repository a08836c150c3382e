package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
}

// User represents a stored user with authentication material.
type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FirstName      string
	LastName       string
	Role           string
	IsSuperAdmin   bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// Deleted reports whether the account is soft-deleted.
func (u User) Deleted() bool {
	return u.DeletedAt != nil
}

// Role names assignable to users.
const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Permission strings carried on access tokens.
const (
	PermItemsRead   = "items:read"
	PermItemsWrite  = "items:write"
	PermItemsDelete = "items:delete"
	PermUsersRead   = "users:read"
	PermUsersWrite  = "users:write"
	PermUsersDelete = "users:delete"
	PermAdminAccess = "admin:access"
	PermAdminManage = "admin:manage"
)

var rolePermissions = map[string][]string{
	RoleUser:      {PermItemsRead, PermItemsWrite},
	RoleModerator: {PermItemsRead, PermItemsWrite, PermItemsDelete, PermUsersRead},
	RoleAdmin: {
		PermItemsRead, PermItemsWrite, PermItemsDelete,
		PermUsersRead, PermUsersWrite, PermUsersDelete, PermAdminAccess,
	},
	RoleSuperAdmin: {
		PermItemsRead, PermItemsWrite, PermItemsDelete,
		PermUsersRead, PermUsersWrite, PermUsersDelete, PermAdminAccess, PermAdminManage,
	},
}

// PermissionsForRole returns the permission set attached to access tokens for
// the given role. Unknown roles get no permissions.
func PermissionsForRole(role string) []string {
	return rolePermissions[role]
}
