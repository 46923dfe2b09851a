// Package role provides CRUD operations for roles and their permission grants.
// Grants are idempotent membership edges: granting an already-granted
// permission is a no-op, not an error.
package role

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleAlreadyExists is returned when creating a role whose name is taken within the project.
	ErrRoleAlreadyExists = errors.New("role with this name already exists")
	// ErrRoleIsSystem is returned when deleting a system role.
	ErrRoleIsSystem = errors.New("system role can not be deleted")
	// ErrPermissionNotFound is returned when granting a permission that does not exist.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create creates a new role. The name must be unique within the project.
func Create(db *gorm.DB, r *models.Role) error {
	if db == nil {
		return ErrDBNil
	}

	var existing models.Role

	result := db.Where("name = ? AND project_id = ?", r.Name, r.ProjectID).First(&existing)
	if result.Error == nil {
		return ErrRoleAlreadyExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Create(r).Error
}

// Get retrieves a role by its ID.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role

	result := db.First(&r, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &r, nil
}

// List retrieves all roles of a project.
func List(db *gorm.DB, projectID string) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role

	result := db.Where("project_id = ?", projectID).Order("priority DESC").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// Update updates name, description and priority of a role.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	result := db.Model(r).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	return Get(db, id)
}

// Delete removes a role together with its grants and assignments.
// System roles are protected.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	r, err := Get(db, id)
	if err != nil {
		return err
	}

	if r.IsSystem {
		return ErrRoleIsSystem
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		return tx.Delete(r).Error
	})
}

// GrantPermission grants a permission to a role. Granting an already-granted
// permission is a no-op; the grantor identity and timestamp are kept for the
// audit trail.
func GrantPermission(db *gorm.DB, roleID, permissionID uint, grantedBy string) error {
	if db == nil {
		return ErrDBNil
	}

	r, err := Get(db, roleID)
	if err != nil {
		return err
	}

	var permission models.Permission
	if err := db.Preload("Feature").First(&permission, permissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionNotFound
		}

		return err
	}

	// A permission carries its tenant through the owning feature; another
	// tenant's permission stays invisible to the grant.
	if permission.Feature.ProjectID != r.ProjectID {
		return ErrPermissionNotFound
	}

	var existing models.RolePermission

	result := db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).First(&existing)
	if result.Error == nil {
		return nil // already granted
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Create(&models.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
		GrantedAt:    time.Now().UTC(),
		GrantedBy:    grantedBy,
	}).Error
}

// RevokePermission removes a permission grant from a role. Revoking a grant
// that does not exist is a no-op.
func RevokePermission(db *gorm.DB, roleID, permissionID uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{}).Error
}

// GrantedPermissions retrieves all permissions granted to a role.
func GrantedPermissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var permissions []models.Permission

	result := db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&permissions)
	if result.Error != nil {
		return nil, result.Error
	}

	return permissions, nil
}
