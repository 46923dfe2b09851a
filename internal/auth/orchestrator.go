package auth

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/audit"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/config"
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

// Origin carries the request metadata recorded with every audited operation.
type Origin struct {
	IPAddress string
	UserAgent string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User *models.User
	TokenPair
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	ProjectID   string
}

// Orchestrator composes the credential verifier, token authority, session
// ledger and audit recorder into the login, register, refresh, revoke and
// change-password operations. Each operation is a single composed
// transaction against the ledger and persistence layer, never interleaved
// ad hoc.
type Orchestrator struct {
	db        *gorm.DB
	authority *Authority
	ledger    *Ledger
	recorder  *audit.Recorder
	policy    config.Security
}

// NewOrchestrator wires the authentication components together.
func NewOrchestrator(
	db *gorm.DB,
	authority *Authority,
	ledger *Ledger,
	recorder *audit.Recorder,
	policy config.Security,
) *Orchestrator {
	return &Orchestrator{
		db:        db,
		authority: authority,
		ledger:    ledger,
		recorder:  recorder,
		policy:    policy,
	}
}

// Login authenticates a principal by username or email and issues an access
// and refresh token pair.
//
// Identifier matching is exact and case-sensitive: "Alice" does not log in
// as "alice". A missing principal and a wrong password both yield
// ErrInvalidCredentials so callers can not enumerate users.
func (o *Orchestrator) Login(identifier, password string, origin Origin) (*LoginResult, error) {
	var candidates []models.User

	err := o.db.Where("username = ? OR email = ?", identifier, identifier).Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user, found := matchIdentifier(candidates, identifier)

	if !found || !user.VerifyPassword(password) {
		o.recorder.Record(audit.Entry{
			Action:     models.AuditLoginFailed,
			EntityType: "User",
			Details:    "failed login attempt: " + identifier,
			IPAddress:  origin.IPAddress,
			UserAgent:  origin.UserAgent,
		})

		return nil, ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return nil, ErrAccountNotActive
	}

	now := time.Now().UTC()
	if err := o.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	user.LastLoginAt = &now

	pair, err := o.issueTokens(user, origin)
	if err != nil {
		return nil, err
	}

	o.recorder.Record(audit.Entry{
		Action:     models.AuditLoginSuccess,
		UserID:     &user.ID,
		EntityID:   &user.ID,
		EntityType: "User",
		Details:    "successful login",
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
		ProjectID:  user.ProjectID,
	})

	return &LoginResult{User: user, TokenPair: *pair}, nil
}

// Register creates a new active user account.
//
// The existence pre-check gives the friendly error; the unique constraints
// on username and email are the durable source of truth when two concurrent
// registrations race past the pre-check.
func (o *Orchestrator) Register(req RegisterRequest, origin Origin) (*models.User, error) {
	if err := o.validatePassword(req.Password); err != nil {
		return nil, err
	}

	var existing models.User

	err := o.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Status:      models.UserStatusActive,
		Username:    req.Username,
		Email:       req.Email,
		Password:    models.HashPassword(req.Password),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		ProjectID:   req.ProjectID,
	}

	if err := o.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	o.recorder.Record(audit.Entry{
		Action:     models.AuditUserCreated,
		UserID:     &user.ID,
		EntityID:   &user.ID,
		EntityType: "User",
		Details:    "user registered: " + user.Email,
		IPAddress:  origin.IPAddress,
		ProjectID:  user.ProjectID,
	})

	return &user, nil
}

// Refresh exchanges an active refresh token for a new token pair, rotating
// the presented token in the same atomic step.
//
// Presenting an already-rotated or revoked token is treated as evidence of
// credential theft: the entire active token set of the affected user is
// revoked before the caller gets ErrInvalidToken back.
func (o *Orchestrator) Refresh(value string, origin Origin) (*TokenPair, error) {
	token, err := o.ledger.Find(value)
	if err != nil {
		return nil, err
	}

	if token.RevokedAt != nil {
		return nil, o.onTokenReuse(token, origin)
	}

	if token.Expired(o.ledger.now().UTC()) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := o.db.First(&user, token.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, ErrAccountNotActive
	}

	successor, err := o.ledger.Rotate(token, o.authority.NewRefreshTokenValue(), origin.IPAddress)
	if errors.Is(err, ErrTokenReuse) {
		// Lost the race against another presentation of the same token.
		return nil, o.onTokenReuse(token, origin)
	}

	if err != nil {
		return nil, err
	}

	access, expiresAt, err := o.authority.IssueAccessToken(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: successor.Token,
		ExpiresAt:    expiresAt,
	}, nil
}

// ChangePassword verifies the current password and stores a new hash. Under
// the default policy every refresh token of the user is revoked, logging the
// user out everywhere.
func (o *Orchestrator) ChangePassword(userID uint64, current, newPassword string, origin Origin) error {
	var user models.User

	err := o.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if !user.VerifyPassword(current) {
		return ErrInvalidCredentials
	}

	if newPassword == current {
		return ErrSamePassword
	}

	if err := o.validatePassword(newPassword); err != nil {
		return err
	}

	err = o.db.Model(&user).Update("password", models.HashPassword(newPassword)).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if _, err := o.ledger.RevokeAll(userID); err != nil {
		return err
	}

	o.recorder.Record(audit.Entry{
		Action:     models.AuditPasswordChanged,
		UserID:     &userID,
		EntityID:   &userID,
		EntityType: "User",
		Details:    "password changed",
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
		ProjectID:  user.ProjectID,
	})

	return nil
}

// RevokeToken revokes a single refresh token. Revoking an unknown or
// already-inactive token is a no-op.
func (o *Orchestrator) RevokeToken(value string, origin Origin) error {
	token, err := o.ledger.Find(value)
	if errors.Is(err, ErrInvalidToken) {
		return nil
	}

	if err != nil {
		return err
	}

	if err := o.ledger.Revoke(token); err != nil {
		return err
	}

	o.recorder.Record(audit.Entry{
		Action:     models.AuditTokenRevoked,
		UserID:     &token.UserID,
		EntityID:   &token.ID,
		EntityType: "RefreshToken",
		Details:    "refresh token revoked",
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
	})

	return nil
}

// RevokeAllTokens revokes every active refresh token of the user.
func (o *Orchestrator) RevokeAllTokens(userID uint64, origin Origin) error {
	revoked, err := o.ledger.RevokeAll(userID)
	if err != nil {
		return err
	}

	o.recorder.Record(audit.Entry{
		Action:     models.AuditTokenRevoked,
		UserID:     &userID,
		EntityID:   &userID,
		EntityType: "User",
		Details:    fmt.Sprintf("revoked all tokens (%d active)", revoked),
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
	})

	return nil
}

// onTokenReuse handles the theft signal: revoke the whole active set of the
// affected user, record the event, surface ErrInvalidToken to the caller.
func (o *Orchestrator) onTokenReuse(token *models.RefreshToken, origin Origin) error {
	revoked, err := o.ledger.RevokeAll(token.UserID)
	if err != nil {
		return err
	}

	o.recorder.Record(audit.Entry{
		Action:     models.AuditTokenReuse,
		UserID:     &token.UserID,
		EntityID:   &token.ID,
		EntityType: "RefreshToken",
		Details:    fmt.Sprintf("spent refresh token presented again, revoked %d active tokens", revoked),
		IPAddress:  origin.IPAddress,
		UserAgent:  origin.UserAgent,
	})

	return ErrInvalidToken
}

// matchIdentifier picks the candidate whose username or email equals the
// identifier byte for byte. The SQL lookup narrows the candidate set but its
// equality depends on the column collation of the storage engine; MySQL's
// default utf8mb4 collations compare case-insensitively, so the policy is
// enforced here instead of being left to the engine.
func matchIdentifier(candidates []models.User, identifier string) (*models.User, bool) {
	for i := range candidates {
		if candidates[i].Username == identifier || candidates[i].Email == identifier {
			return &candidates[i], true
		}
	}

	return nil, false
}

func (o *Orchestrator) issueTokens(user *models.User, origin Origin) (*TokenPair, error) {
	access, expiresAt, err := o.authority.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := o.ledger.Issue(user.ID, o.authority.NewRefreshTokenValue(), origin.IPAddress)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresAt:    expiresAt,
	}, nil
}

// validatePassword enforces the configured password policy.
func (o *Orchestrator) validatePassword(password string) error {
	if len(password) < o.policy.PasswordMinLength {
		return ErrPasswordPolicy
	}

	if !o.policy.RequireStrongPassword {
		return nil
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return ErrPasswordPolicy
	}

	return nil
}
