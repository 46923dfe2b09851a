// Package handler holds the shared pieces of the web handler packages.
package handler

import (
	"github.com/go-playground/validator/v10"
)

// Validate is the shared request validator used by all handler packages.
var Validate = validator.New()
