package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrSigningKeyEmpty error if config jwt.signingkey is empty.
	ErrSigningKeyEmpty = errors.New("toml config jwt.signingkey can not be empty")

	// ErrIssuerEmpty error if config jwt.issuer is empty.
	ErrIssuerEmpty = errors.New("toml config jwt.issuer can not be empty")

	// ErrAudienceEmpty error if config jwt.audience is empty.
	ErrAudienceEmpty = errors.New("toml config jwt.audience can not be empty")
)
