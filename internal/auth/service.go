package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

// Service answers authorization questions over the permission graph:
// users -> roles -> permission grants -> permissions of features.
// Resolution is additive only. A permission reachable through any assigned
// role is held; role priority never resolves anything.
type Service struct {
	db *gorm.DB
}

// NewService creates a new authorization service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// EffectivePermission is one element of a user's effective permission set.
type EffectivePermission struct {
	FeatureCode string
	Kind        models.PermissionKind
}

// HasPermission checks if a user holds the given permission kind on the
// feature, scoped to the project. The check is a single short-circuit join;
// the full effective set is never materialized for a membership test.
func (s *Service) HasPermission(
	userID uint64,
	projectID, featureCode string,
	kind models.PermissionKind,
) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN features ON features.id = permissions.feature_id").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND features.code = ? AND permissions.kind = ? AND features.project_id = ?",
			userID, featureCode, kind, projectID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user holds at least one of the given kinds on
// the feature.
func (s *Service) HasAnyPermission(
	userID uint64,
	projectID, featureCode string,
	kinds []models.PermissionKind,
) (bool, error) {
	for _, kind := range kinds {
		has, err := s.HasPermission(userID, projectID, featureCode, kind)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// EffectivePermissions retrieves the union of all permissions reachable by
// the user through all assigned roles, scoped to the project. Duplicate
// grants through several roles collapse to one entry.
func (s *Service) EffectivePermissions(userID uint64, projectID string) ([]EffectivePermission, error) {
	type row struct {
		Code string
		Kind models.PermissionKind
	}

	var rows []row

	err := s.db.Table("permissions").
		Select("DISTINCT features.code AS code, permissions.kind AS kind").
		Joins("JOIN features ON features.id = permissions.feature_id").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND features.project_id = ?", userID, projectID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get effective permissions: %w", err)
	}

	result := make([]EffectivePermission, 0, len(rows))
	for _, r := range rows {
		result = append(result, EffectivePermission{FeatureCode: r.Code, Kind: r.Kind})
	}

	return result, nil
}

// RolesForUser retrieves all roles assigned to a user.
func (s *Service) RolesForUser(userID uint64) ([]models.Role, error) {
	var roles []models.Role

	err := s.db.Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return roles, nil
}
