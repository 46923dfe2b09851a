package config

import (
	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	JWT       JWT
	Security  Security
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string // domain name for the webserver
	Port         int    // listening port for the webserver
	ShutDownTime int    // wait time for shutdown
	URL          string // base url for the webserver
}

// JWT holds the access token signing settings.
// The key material is loaded once at startup and never mutated at runtime.
type JWT struct {
	// SigningKey is the HMAC secret used to sign access tokens.
	SigningKey string
	// Issuer is the "iss" claim stamped into every access token.
	Issuer string
	// Audience is the "aud" claim stamped into every access token.
	Audience string
	// AccessTokenMinutes is the access token lifetime in minutes.
	AccessTokenMinutes int
	// RefreshTokenDays is the refresh token lifetime in days.
	RefreshTokenDays int
}

// Security holds the password policy and login rate limit settings.
type Security struct {
	// PasswordMinLength is the minimum accepted password length.
	PasswordMinLength int
	// RequireStrongPassword enforces upper, lower, digit and symbol characters.
	RequireStrongPassword bool
	// LoginRatePerMinute caps authentication attempts per client IP and minute.
	LoginRatePerMinute int
	// LoginRateBurst is the burst allowance on top of LoginRatePerMinute.
	LoginRateBurst int
}
