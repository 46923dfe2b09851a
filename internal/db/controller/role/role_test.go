package role

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Module{},
		&models.Feature{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserRole{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedPermission(t *testing.T, db *gorm.DB) *models.Permission {
	t.Helper()

	m := models.Module{Name: "Content", Code: "CONTENT"}
	require.NoError(t, db.Create(&m).Error)

	f := models.Feature{Name: "Articles", Code: "ARTICLES", ModuleID: m.ID}
	require.NoError(t, db.Create(&f).Error)

	p := models.Permission{FeatureID: f.ID, Kind: models.PermissionWrite}
	require.NoError(t, db.Create(&p).Error)

	return &p
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	r := models.Role{Name: "Editor", Priority: 10}
	require.NoError(t, Create(db, &r))
	require.NotZero(t, r.ID)

	// Same name within the same project is rejected.
	err := Create(db, &models.Role{Name: "Editor"})
	assert.ErrorIs(t, err, ErrRoleAlreadyExists)

	// Same name in another project is fine.
	err = Create(db, &models.Role{Name: "Editor", ProjectID: "p2"})
	assert.NoError(t, err)

	assert.ErrorIs(t, Create(nil, &r), ErrDBNil)
}

func TestListOrdersByPriority(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Create(db, &models.Role{Name: "Viewer", Priority: 1}))
	require.NoError(t, Create(db, &models.Role{Name: "Admin", Priority: 100}))
	require.NoError(t, Create(db, &models.Role{Name: "Editor", Priority: 10}))

	roles, err := List(db, "")
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, "Admin", roles[0].Name)
	assert.Equal(t, "Editor", roles[1].Name)
	assert.Equal(t, "Viewer", roles[2].Name)
}

func TestGrantPermissionIdempotent(t *testing.T) {
	db := setupTestDB(t)
	p := seedPermission(t, db)

	r := models.Role{Name: "Editor"}
	require.NoError(t, Create(db, &r))

	require.NoError(t, GrantPermission(db, r.ID, p.ID, "tester"))
	require.NoError(t, GrantPermission(db, r.ID, p.ID, "tester"), "granting twice is a no-op")

	granted, err := GrantedPermissions(db, r.ID)
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, p.ID, granted[0].ID)

	// Grantor and timestamp are recorded on the edge.
	var edge models.RolePermission
	require.NoError(t, db.Where("role_id = ? AND permission_id = ?", r.ID, p.ID).First(&edge).Error)
	assert.Equal(t, "tester", edge.GrantedBy)
	assert.False(t, edge.GrantedAt.IsZero())
}

func TestGrantPermissionUnknownTargets(t *testing.T) {
	db := setupTestDB(t)
	p := seedPermission(t, db)

	r := models.Role{Name: "Editor"}
	require.NoError(t, Create(db, &r))

	assert.ErrorIs(t, GrantPermission(db, 9999, p.ID, "tester"), ErrRoleNotFound)
	assert.ErrorIs(t, GrantPermission(db, r.ID, 9999, "tester"), ErrPermissionNotFound)
}

func TestGrantPermissionStaysWithinProject(t *testing.T) {
	db := setupTestDB(t)

	m := models.Module{Name: "Content", Code: "CONTENT", ProjectID: "p2"}
	require.NoError(t, db.Create(&m).Error)

	f := models.Feature{Name: "Articles", Code: "ARTICLES", ModuleID: m.ID, ProjectID: "p2"}
	require.NoError(t, db.Create(&f).Error)

	p := models.Permission{FeatureID: f.ID, Kind: models.PermissionWrite}
	require.NoError(t, db.Create(&p).Error)

	r := models.Role{Name: "Editor", ProjectID: "p1"}
	require.NoError(t, Create(db, &r))

	// Another tenant's permission is invisible to the grant.
	assert.ErrorIs(t, GrantPermission(db, r.ID, p.ID, "tester"), ErrPermissionNotFound)

	granted, err := GrantedPermissions(db, r.ID)
	require.NoError(t, err)
	assert.Empty(t, granted)
}

func TestRevokePermission(t *testing.T) {
	db := setupTestDB(t)
	p := seedPermission(t, db)

	r := models.Role{Name: "Editor"}
	require.NoError(t, Create(db, &r))
	require.NoError(t, GrantPermission(db, r.ID, p.ID, "tester"))

	require.NoError(t, RevokePermission(db, r.ID, p.ID))

	granted, err := GrantedPermissions(db, r.ID)
	require.NoError(t, err)
	assert.Empty(t, granted)

	// Revoking an absent grant is a no-op.
	assert.NoError(t, RevokePermission(db, r.ID, p.ID))
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	p := seedPermission(t, db)

	r := models.Role{Name: "Editor"}
	require.NoError(t, Create(db, &r))
	require.NoError(t, GrantPermission(db, r.ID, p.ID, "tester"))
	require.NoError(t, db.Create(&models.UserRole{UserID: 1, RoleID: r.ID}).Error)

	require.NoError(t, Delete(db, r.ID))

	_, err := Get(db, r.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	// Grants and assignments went with it.
	var count int64
	require.NoError(t, db.Model(&models.RolePermission{}).Where("role_id = ?", r.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, db.Model(&models.UserRole{}).Where("role_id = ?", r.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteSystemRole(t *testing.T) {
	db := setupTestDB(t)

	r := models.Role{Name: "Administrator", IsSystem: true}
	require.NoError(t, Create(db, &r))

	assert.ErrorIs(t, Delete(db, r.ID), ErrRoleIsSystem)

	_, err := Get(db, r.ID)
	assert.NoError(t, err, "the protected role must survive")
}
