package services

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all services; a Validate caches struct metadata and
// is safe for concurrent use.
var validate = validator.New()

// Required flags a blank value.
func (e *ValidationError) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "This field is required.")
		return false
	}
	return true
}

// Email flags anything but a bare address. Display-name forms such as
// "Ada <ada@example.com>" are rejected.
func (e *ValidationError) Email(field, value string) {
	if !e.Required(field, value) {
		return
	}
	if err := validate.Var(value, "email"); err != nil {
		e.Add(field, "Enter a valid email address.")
	}
}

// Max flags a value longer than limit characters, counted in runes.
func (e *ValidationError) Max(field, value string, limit int) {
	if err := validate.Var(value, fmt.Sprintf("max=%d", limit)); err != nil {
		e.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", limit))
	}
}
