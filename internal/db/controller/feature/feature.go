// Package feature provides CRUD operations for features and their derived
// permission set. Every feature always carries exactly the full permission
// kind set; the permissions are provisioned in the creation transaction,
// never lazily.
package feature

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

var (
	// ErrFeatureNotFound is returned when a feature is not found.
	ErrFeatureNotFound = errors.New("feature not found")
	// ErrFeatureAlreadyExists is returned when creating a feature whose code is taken within the module.
	ErrFeatureAlreadyExists = errors.New("feature with this code already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create creates a feature together with one permission per supported
// permission kind, all in one transaction.
func Create(db *gorm.DB, f *models.Feature) error {
	if db == nil {
		return ErrDBNil
	}

	var existing models.Feature

	result := db.Where("code = ? AND module_id = ?", f.Code, f.ModuleID).First(&existing)
	if result.Error == nil {
		return ErrFeatureAlreadyExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return err
		}

		for _, kind := range models.PermissionKinds() {
			permission := models.Permission{
				FeatureID:   f.ID,
				Kind:        kind,
				Description: fmt.Sprintf("%s permission for %s", kind, f.Name),
			}

			if err := tx.Create(&permission).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Get retrieves a feature by its ID.
func Get(db *gorm.DB, id uint) (*models.Feature, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var f models.Feature

	result := db.First(&f, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFeatureNotFound
		}

		return nil, result.Error
	}

	return &f, nil
}

// List retrieves all features of a module.
func List(db *gorm.DB, moduleID uint) ([]models.Feature, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var features []models.Feature

	result := db.Where("module_id = ?", moduleID).Find(&features)
	if result.Error != nil {
		return nil, result.Error
	}

	return features, nil
}

// Permissions retrieves the permissions of a feature.
func Permissions(db *gorm.DB, id uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var permissions []models.Permission

	result := db.Where("feature_id = ?", id).Find(&permissions)
	if result.Error != nil {
		return nil, result.Error
	}

	return permissions, nil
}

// Update updates name, description and active flag of a feature.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) (*models.Feature, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	f, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	result := db.Model(f).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	return Get(db, id)
}

// Delete removes a feature together with its permissions and their grants.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	f, err := Get(db, id)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var permissionIDs []uint

		if err := tx.Model(&models.Permission{}).
			Where("feature_id = ?", id).
			Pluck("id", &permissionIDs).Error; err != nil {
			return err
		}

		if len(permissionIDs) > 0 {
			if err := tx.Where("permission_id IN ?", permissionIDs).
				Delete(&models.RolePermission{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("feature_id = ?", id).Delete(&models.Permission{}).Error; err != nil {
			return err
		}

		return tx.Delete(f).Error
	})
}
