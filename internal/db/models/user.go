package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	// UserStatusActive indicates the account may log in.
	UserStatusActive UserStatus = "active"
	// UserStatusInactive indicates the account was switched off by an admin.
	UserStatusInactive UserStatus = "inactive"
	// UserStatusSuspended indicates the account was suspended and may not log in.
	UserStatusSuspended UserStatus = "suspended"
)

// User represents a user account in the system.
// Users authenticate with a local Argon2id password and hold zero or more
// role assignments for permission management.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Status indicates whether the account is active, inactive or suspended.
	Status UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null"`
	// Email is the user's unique email address, also accepted for login.
	Email string `gorm:"unique;size:255;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:100"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:100"`
	// PhoneNumber is the user's optional phone number.
	PhoneNumber string `gorm:"size:50"`
	// ProjectID is the tenant scope this user belongs to (empty for the default scope).
	ProjectID string `gorm:"size:100;index"`
	// LastLoginAt is the timestamp of the last successful login (nil if never).
	LastLoginAt *time.Time
	// Roles are the roles assigned to this user via the user_roles table.
	Roles []Role `gorm:"many2many:user_roles;"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp. gorm scopes every query on the
	// model with it, so a deleted account is invisible to login lookups too.
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise (including malformed hashes).
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
