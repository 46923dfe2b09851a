// Package module provides CRUD operations for the self-referencing module tree.
// The tree is stored with parent pointers only; children are computed by
// query. Reparenting walks the proposed parent's ancestor chain so a module
// can never become its own ancestor.
package module

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

const whereCodeAndProject = "code = ? AND project_id = ?"

var (
	// ErrModuleNotFound is returned when a module is not found.
	ErrModuleNotFound = errors.New("module not found")
	// ErrModuleAlreadyExists is returned when creating a module whose code is taken within the project.
	ErrModuleAlreadyExists = errors.New("module with this code already exists")
	// ErrCycleDetected is returned when a reparent would make a module its own ancestor.
	ErrCycleDetected = errors.New("module can not become its own ancestor")
	// ErrModuleNotEmpty is returned when deleting a module that still has sub-modules or features.
	ErrModuleNotEmpty = errors.New("module still has sub-modules or features")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create creates a new module. The code must be unique within the project.
func Create(db *gorm.DB, m *models.Module) error {
	if db == nil {
		return ErrDBNil
	}

	var existing models.Module

	result := db.Where(whereCodeAndProject, m.Code, m.ProjectID).First(&existing)
	if result.Error == nil {
		return ErrModuleAlreadyExists
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	if m.ParentModuleID != nil {
		if _, err := Get(db, *m.ParentModuleID); err != nil {
			return err
		}
	}

	return db.Create(m).Error
}

// Get retrieves a module by its ID.
func Get(db *gorm.DB, id uint) (*models.Module, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m models.Module

	result := db.First(&m, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}

		return nil, result.Error
	}

	return &m, nil
}

// List retrieves all modules of a project ordered by their sibling order.
func List(db *gorm.DB, projectID string) ([]models.Module, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var modules []models.Module

	result := db.Where("project_id = ?", projectID).Order("`order`").Find(&modules)
	if result.Error != nil {
		return nil, result.Error
	}

	return modules, nil
}

// Children retrieves the direct sub-modules of a module.
func Children(db *gorm.DB, id uint) ([]models.Module, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var modules []models.Module

	result := db.Where("parent_module_id = ?", id).Order("`order`").Find(&modules)
	if result.Error != nil {
		return nil, result.Error
	}

	return modules, nil
}

// Update updates name, description, order and active flag of a module.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) (*models.Module, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	m, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	result := db.Model(m).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	return Get(db, id)
}

// SetParent moves a module below a new parent (nil makes it a root module).
// The proposed parent's ancestor chain is walked up to the root; if the moved
// module appears in it, the move is rejected with ErrCycleDetected.
func SetParent(db *gorm.DB, id uint, parentID *uint) error {
	if db == nil {
		return ErrDBNil
	}

	m, err := Get(db, id)
	if err != nil {
		return err
	}

	if parentID != nil {
		if *parentID == id {
			return ErrCycleDetected
		}

		parent, err := Get(db, *parentID)
		if err != nil {
			return err
		}

		// Another tenant's module is not a valid parent and stays invisible.
		if parent.ProjectID != m.ProjectID {
			return ErrModuleNotFound
		}

		ancestor := parent
		for ancestor.ParentModuleID != nil {
			if *ancestor.ParentModuleID == id {
				return ErrCycleDetected
			}

			ancestor, err = Get(db, *ancestor.ParentModuleID)
			if err != nil {
				return err
			}
		}
	}

	return db.Model(m).Update("parent_module_id", parentID).Error
}

// Delete removes a module. Deletion is refused while the module still has
// sub-modules or features; cascading is always the caller's explicit choice,
// never implicit.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	m, err := Get(db, id)
	if err != nil {
		return err
	}

	var count int64

	if err := db.Model(&models.Module{}).Where("parent_module_id = ?", id).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrModuleNotEmpty
	}

	if err := db.Model(&models.Feature{}).Where("module_id = ?", id).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrModuleNotEmpty
	}

	return db.Delete(m).Error
}
