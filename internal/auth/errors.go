package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the principal is unknown or the
	// password does not match. The two cases are deliberately not
	// distinguishable by callers to prevent user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotActive is returned when authenticating against an account
	// whose status is not active.
	ErrAccountNotActive = errors.New("account is not active")

	// ErrAlreadyExists is returned when registering a username or email that
	// is already taken.
	ErrAlreadyExists = errors.New("user with username or email already exists")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken is the single outcome for every failed access or refresh
	// token check: bad signature, wrong issuer or audience, expiry, malformed
	// input and unknown token values all surface as this error. The distinction
	// is logged internally, never exposed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenReuse is returned when a presented refresh token was already
	// rotated or revoked. All active tokens of the affected user get revoked
	// when this is detected.
	ErrTokenReuse = errors.New("refresh token reuse detected")

	// ErrPasswordPolicy is returned when a new password does not satisfy the
	// configured password policy.
	ErrPasswordPolicy = errors.New("password does not satisfy the password policy")

	// ErrSamePassword is returned when a password change presents a new
	// password equal to the current one.
	ErrSamePassword = errors.New("new password must differ from the current password")
)
