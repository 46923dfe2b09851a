package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

// Ledger is the durable record of issued refresh tokens and their lifecycle
// state. A token moves Active -> Rotated (terminal, points to its successor)
// or Active -> Revoked (terminal, no successor); expiry is a pure function of
// time, not a transition.
type Ledger struct {
	db         *gorm.DB
	refreshTTL time.Duration

	// now is the injectable clock used for issuance and revocation stamps.
	now func() time.Time
}

const whereTokenActive = "id = ? AND revoked_at IS NULL"

// NewLedger creates a session ledger with the given refresh token lifetime.
func NewLedger(db *gorm.DB, refreshTTL time.Duration) *Ledger {
	return &Ledger{
		db:         db,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue records a new active refresh token for the user.
func (l *Ledger) Issue(userID uint64, value, ipAddress string) (*models.RefreshToken, error) {
	token := models.RefreshToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: l.now().UTC().Add(l.refreshTTL),
		IPAddress: ipAddress,
	}

	if err := l.db.Create(&token).Error; err != nil {
		return nil, fmt.Errorf("failed to record refresh token: %w", err)
	}

	return &token, nil
}

// Find looks up a refresh token by its opaque value.
// An unknown value yields ErrInvalidToken; the caller can not distinguish a
// token that never existed from one long swept away.
func (l *Ledger) Find(value string) (*models.RefreshToken, error) {
	var token models.RefreshToken

	err := l.db.Where("token = ?", value).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}

	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	return &token, nil
}

// Rotate atomically marks the presented token rotated and records its
// successor in one transaction. The revocation is a conditional update on
// "still not revoked": of two concurrent rotations of the same token exactly
// one succeeds, the other observes an already-spent token and gets
// ErrTokenReuse as the theft signal.
func (l *Ledger) Rotate(token *models.RefreshToken, successorValue, ipAddress string) (*models.RefreshToken, error) {
	now := l.now().UTC()

	successor := models.RefreshToken{
		UserID:    token.UserID,
		Token:     successorValue,
		ExpiresAt: now.Add(l.refreshTTL),
		IPAddress: ipAddress,
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where(whereTokenActive, token.ID).
			Updates(map[string]interface{}{
				"revoked_at":        now,
				"replaced_by_token": successorValue,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			// Someone spent this token between lookup and update.
			return ErrTokenReuse
		}

		if err := tx.Create(&successor).Error; err != nil {
			return fmt.Errorf("failed to record successor token: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &successor, nil
}

// Revoke marks a single token revoked. Revoking an already-inactive token is
// a no-op, not an error.
func (l *Ledger) Revoke(token *models.RefreshToken) error {
	err := l.db.Model(&models.RefreshToken{}).
		Where(whereTokenActive, token.ID).
		Update("revoked_at", l.now().UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAll revokes every token of the user that is active at the start of
// the sweep and returns how many were hit. A token issued concurrently with
// the sweep stays valid; that race is tolerated, not silently broken.
func (l *Ledger) RevokeAll(userID uint64) (int64, error) {
	res := l.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", l.now().UTC())
	if res.Error != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// ActiveCount counts the user's currently exchangeable tokens.
func (l *Ledger) ActiveCount(userID uint64) (int64, error) {
	var count int64

	err := l.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, l.now().UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active tokens: %w", err)
	}

	return count, nil
}

// SweepExpired deletes tokens that expired before the cutoff. Correctness
// never depends on this; it is storage hygiene only.
func (l *Ledger) SweepExpired(cutoff time.Time) (int64, error) {
	res := l.db.Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired tokens: %w", res.Error)
	}

	return res.RowsAffected, nil
}
