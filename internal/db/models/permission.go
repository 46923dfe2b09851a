package models

import "time"

// PermissionKind represents the kind of access a permission grants.
type PermissionKind string

const (
	// PermissionRead allows reading data of a feature.
	PermissionRead PermissionKind = "read"
	// PermissionWrite allows creating and updating data of a feature.
	PermissionWrite PermissionKind = "write"
	// PermissionDelete allows deleting data of a feature.
	PermissionDelete PermissionKind = "delete"
	// PermissionExecute allows running actions of a feature.
	PermissionExecute PermissionKind = "execute"
)

// PermissionKinds returns the full permission kind set every feature carries.
func PermissionKinds() []PermissionKind {
	return []PermissionKind{PermissionRead, PermissionWrite, PermissionDelete, PermissionExecute}
}

// Permission represents a single grantable access right of a feature.
// Its identity is the (FeatureID, Kind) pair; permissions are created together
// with their feature and never lazily.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// FeatureID is the feature this permission belongs to.
	FeatureID uint `gorm:"not null;uniqueIndex:idx_permissions_feature_kind"`
	// Feature is the owning feature (loaded via foreign key).
	Feature Feature `gorm:"foreignKey:FeatureID;references:ID;constraint:OnDelete:CASCADE"`
	// Kind is the access kind this permission grants.
	Kind PermissionKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_permissions_feature_kind"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:500"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
