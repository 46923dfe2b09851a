package models

import "time"

// RolePermission represents the many-to-many relationship between roles and permissions.
// Granting an already-granted permission is a no-op, not an error; the grantor
// identity and timestamp are kept for the audit trail.
type RolePermission struct {
	// RoleID is the ID of the role in this mapping.
	RoleID uint `gorm:"primaryKey;column:role_id"`
	// PermissionID is the ID of the permission in this mapping.
	PermissionID uint `gorm:"primaryKey;column:permission_id"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
	// GrantedAt is the timestamp when the permission was granted.
	GrantedAt time.Time
	// GrantedBy is the identity that granted the permission.
	GrantedBy string `gorm:"size:100"`
}

// TableName specifies the database table name for the RolePermission model.
// This overrides GORM's default pluralized table naming.
func (RolePermission) TableName() string {
	return "role_permissions"
}
