// Package auditlog provides read access to the append-only audit trail.
// There is deliberately no update or delete function in this package.
package auditlog

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Filter narrows an audit trail query. Zero values mean "no constraint".
type Filter struct {
	Action     models.AuditAction
	UserID     *uint64
	EntityType string
	ProjectID  string
	Start      *time.Time
	End        *time.Time

	Page     int
	PageSize int
}

// List retrieves matching audit entries, newest first, with paging.
func List(db *gorm.DB, f Filter) ([]models.AuditLog, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	query := db.Model(&models.AuditLog{})

	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}

	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}

	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}

	if f.ProjectID != "" {
		query = query.Where("project_id = ?", f.ProjectID)
	}

	if f.Start != nil {
		query = query.Where("created_at >= ?", *f.Start)
	}

	if f.End != nil {
		query = query.Where("created_at <= ?", *f.End)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}

	if f.PageSize < 1 {
		f.PageSize = 50
	}

	var entries []models.AuditLog

	err := query.Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
