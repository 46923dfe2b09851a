package models

import "time"

// Module represents a node in the self-referencing resource tree.
// Modules contain features and may nest below a parent module. The tree is
// stored with parent pointers only; children are always computed by query.
type Module struct {
	// ID is the unique identifier for the module.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the module.
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable description of the module.
	Description string `gorm:"size:500"`
	// Code is the API access code, unique within the project scope.
	Code string `gorm:"size:50;not null;uniqueIndex:idx_modules_code_project"`
	// ParentModuleID is the optional parent module (nil for root modules).
	ParentModuleID *uint `gorm:"index"`
	// Order positions this module among its siblings.
	Order int `gorm:"default:0"`
	// IsActive indicates whether the module is enabled.
	IsActive bool `gorm:"default:true"`
	// ProjectID is the tenant scope this module belongs to.
	ProjectID string `gorm:"size:100;uniqueIndex:idx_modules_code_project"`
	// CreatedBy is the identity that created this module.
	CreatedBy string `gorm:"size:100"`
	// UpdatedBy is the identity that last updated this module.
	UpdatedBy string `gorm:"size:100"`
	// CreatedAt is the timestamp when the module was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the module was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Module model.
// This overrides GORM's default pluralized table naming.
func (Module) TableName() string {
	return "modules"
}
