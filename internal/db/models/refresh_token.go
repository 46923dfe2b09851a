package models

import "time"

// RefreshToken represents one link in a user's refresh token chain.
// The token value is opaque and random; it carries no structure and is only
// an index into this table. A token is active while it has not been revoked
// and has not passed its expiry; rotation revokes it and records its successor.
type RefreshToken struct {
	// ID is the unique identifier for the refresh token record.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the user this token was issued to.
	UserID uint64 `gorm:"not null;index"`
	// User is the owning user (enforced with a foreign key constraint).
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	// Token is the opaque random token value presented by the client.
	Token string `gorm:"unique;size:128;not null"`
	// ExpiresAt is the instant the token stops being valid regardless of state.
	ExpiresAt time.Time `gorm:"not null"`
	// RevokedAt is the instant the token was revoked or rotated (nil while active).
	RevokedAt *time.Time
	// ReplacedByToken is the successor token value, set only on rotation.
	ReplacedByToken string `gorm:"size:128"`
	// IPAddress is the client address the token was issued to.
	IPAddress string `gorm:"size:45"`
	// CreatedAt is the timestamp when the token was issued (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the RefreshToken model.
// This overrides GORM's default pluralized table naming.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Expired reports whether the token has passed its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Active reports whether the token may still be exchanged at the given instant.
// State is a pure function of the stored fields and time; no background sweep
// is needed for correctness.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && !t.Expired(now)
}
