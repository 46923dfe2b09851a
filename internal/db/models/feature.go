package models

import "time"

// Feature represents a functional unit inside a module.
// Every feature always carries the full permission kind set
// (read, write, delete, execute), provisioned at creation time.
type Feature struct {
	// ID is the unique identifier for the feature.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the feature.
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable description of the feature.
	Description string `gorm:"size:500"`
	// Code is the API access code, unique within the owning module.
	Code string `gorm:"size:50;not null;uniqueIndex:idx_features_code_module"`
	// ModuleID is the module this feature belongs to.
	ModuleID uint `gorm:"not null;uniqueIndex:idx_features_code_module"`
	// Module is the owning module (enforced with a foreign key constraint).
	Module Module `gorm:"foreignKey:ModuleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE"`
	// IsActive indicates whether the feature is enabled.
	IsActive bool `gorm:"default:true"`
	// ProjectID is the tenant scope this feature belongs to.
	ProjectID string `gorm:"size:100;index"`
	// CreatedBy is the identity that created this feature.
	CreatedBy string `gorm:"size:100"`
	// UpdatedBy is the identity that last updated this feature.
	UpdatedBy string `gorm:"size:100"`
	// CreatedAt is the timestamp when the feature was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the feature was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Feature model.
// This overrides GORM's default pluralized table naming.
func (Feature) TableName() string {
	return "features"
}
