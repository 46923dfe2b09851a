package models

import "time"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are collections of permission grants that can be assigned to users.
// Access is purely additive: a permission reachable through any assigned role
// is held, and Priority is advisory ordering only, never conflict resolution.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the role name, unique within its project scope.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_roles_name_project"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:500"`
	// Priority is an advisory ordering value (higher = more authoritative).
	Priority int `gorm:"default:0"`
	// IsSystem indicates if this is a system role that cannot be deleted.
	IsSystem bool `gorm:"default:false"`
	// ProjectID is the tenant scope this role belongs to.
	ProjectID string `gorm:"size:100;uniqueIndex:idx_roles_name_project"`
	// CreatedBy is the identity that created this role.
	CreatedBy string `gorm:"size:100"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
