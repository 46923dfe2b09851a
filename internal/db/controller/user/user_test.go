package user

import (
	"testing"
	"time"

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
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.RefreshToken{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	u := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: models.HashPassword("Sup3r-secret!"),
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(&u).Error)

	return &u
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "alice")

	got, err := Get(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = Get(db, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = Get(nil, u.ID)
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestList(t *testing.T) {
	db := setupTestDB(t)

	seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedUser(t, db, "carol")

	require.NoError(t, SetStatus(db, bob.ID, models.UserStatusSuspended))

	users, total, err := List(db, "", nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 3)

	suspended := models.UserStatusSuspended
	users, total, err = List(db, "", &suspended, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	// Paging caps the page, not the total.
	users, total, err = List(db, "", nil, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)
}

func TestAssignAndRemoveRole(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "alice")

	r := models.Role{Name: "Editor"}
	require.NoError(t, db.Create(&r).Error)

	require.NoError(t, AssignRole(db, u.ID, r.ID, "tester"))
	require.NoError(t, AssignRole(db, u.ID, r.ID, "tester"), "assigning twice is a no-op")

	var count int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, AssignRole(db, 9999, r.ID, "tester"), ErrUserNotFound)
	assert.ErrorIs(t, AssignRole(db, u.ID, 9999, "tester"), ErrRoleNotFound)

	require.NoError(t, RemoveRole(db, u.ID, r.ID))

	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Removing an absent assignment is a no-op.
	assert.NoError(t, RemoveRole(db, u.ID, r.ID))
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	u := seedUser(t, db, "alice")

	r := models.Role{Name: "Editor"}
	require.NoError(t, db.Create(&r).Error)
	require.NoError(t, AssignRole(db, u.ID, r.ID, "tester"))

	token := models.RefreshToken{
		UserID:    u.ID,
		Token:     "refresh-value",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, db.Create(&token).Error)

	require.NoError(t, Delete(db, u.ID))

	// The account is soft deleted, its sessions revoked, its roles dropped.
	// Scoped queries no longer see the row; unscoped access shows the
	// deletion timestamp.
	_, err := Get(db, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var deleted models.User
	require.NoError(t, db.Unscoped().First(&deleted, u.ID).Error)
	assert.True(t, deleted.DeletedAt.Valid)

	users, total, err := List(db, "", nil, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)

	var stored models.RefreshToken
	require.NoError(t, db.First(&stored, token.ID).Error)
	assert.NotNil(t, stored.RevokedAt)

	var count int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Zero(t, count)
}
