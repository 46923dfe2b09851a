// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("GO_IDENTITY_ADMIN_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings.
// Only the parameters the daemon can not run without are checked here,
// everything else gets a default via Defaults.
func validate(c Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.JWT.SigningKey == "" {
		return errors.Wrap(ErrSigningKeyEmpty, invalidErrMessage)
	}

	if c.JWT.Issuer == "" {
		return errors.Wrap(ErrIssuerEmpty, invalidErrMessage)
	}

	if c.JWT.Audience == "" {
		return errors.Wrap(ErrAudienceEmpty, invalidErrMessage)
	}

	return nil
}

// Defaults fills in the optional settings that were left empty in the file.
// Returned as a copy so the loaded config stays immutable after start.
func Defaults(c Config) Config {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // seconds
	}

	if c.JWT.AccessTokenMinutes == 0 {
		c.JWT.AccessTokenMinutes = 60
	}

	if c.JWT.RefreshTokenDays == 0 {
		c.JWT.RefreshTokenDays = 7
	}

	if c.Security.PasswordMinLength == 0 {
		c.Security.PasswordMinLength = 8
	}

	if c.Security.LoginRatePerMinute == 0 {
		c.Security.LoginRatePerMinute = 30
	}

	if c.Security.LoginRateBurst == 0 {
		c.Security.LoginRateBurst = 10
	}

	return c
}
