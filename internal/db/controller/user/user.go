// Package user provides administrative operations on user accounts and their
// role assignments. Role assignment is an idempotent membership edge, and a
// user is never deleted while active refresh tokens reference it: deletion
// revokes them in the same transaction.
package user

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when assigning a role that does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	result := db.First(&u, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &u, nil
}

// List lists users of a project with optional status filter and paging.
func List(db *gorm.DB, projectID string, status *models.UserStatus, limit, offset int) ([]models.User, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	var (
		users []models.User
		total int64
	)

	query := db.Model(&models.User{}).Where("project_id = ?", projectID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// SetStatus changes the lifecycle state of an account.
func SetStatus(db *gorm.DB, id uint64, status models.UserStatus) error {
	if db == nil {
		return ErrDBNil
	}

	u, err := Get(db, id)
	if err != nil {
		return err
	}

	return db.Model(u).Update("status", status).Error
}

// AssignRole assigns a role to a user. Assigning an already-assigned role is
// a no-op, not an error.
func AssignRole(db *gorm.DB, userID uint64, roleID uint, assignedBy string) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := Get(db, userID); err != nil {
		return err
	}

	var r models.Role
	if err := db.First(&r, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}

		return err
	}

	var existing models.UserRole

	result := db.Where("user_id = ? AND role_id = ?", userID, roleID).First(&existing)
	if result.Error == nil {
		return nil // already assigned
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Create(&models.UserRole{
		UserID:     userID,
		RoleID:     roleID,
		AssignedAt: time.Now().UTC(),
		AssignedBy: assignedBy,
	}).Error
}

// RemoveRole removes a role assignment from a user. Removing an assignment
// that does not exist is a no-op.
func RemoveRole(db *gorm.DB, userID uint64, roleID uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error
}

// Delete soft deletes a user, making the account invisible to every lookup
// including the login path. All refresh tokens and role assignments of the
// user are removed in the same transaction; a deleted user never keeps an
// active session behind.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	u, err := Get(db, id)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		if err := tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", id).
			Update("revoked_at", now).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		return tx.Delete(u).Error
	})
}
