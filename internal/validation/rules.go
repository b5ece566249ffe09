// Package validation holds the jellydator rules shared by request DTOs and use
// cases, plus the bridge from validation failures to apperrors.ErrInvalidInput.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/storefront/internal/errors"
)

// Password length bounds in characters.
const (
	PasswordMinLength = 8
	PasswordMaxLength = 128
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError turns a jellydator error into ErrInvalidInput, keeping the
// per-field messages. nil stays nil.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email accepts addresses of the form local@domain.tld. Surrounding whitespace is
// rejected; callers normalize before storing.
var Email = validation.NewStringRuleWithError(
	emailPattern.MatchString,
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank rejects strings made only of whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Password enforces the length bounds on a plaintext password. Empty values are
// left to Required.
var Password = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if n := utf8.RuneCountInString(s); n < PasswordMinLength || n > PasswordMaxLength {
		return validation.NewError(
			"validation_password_length",
			"password must be between 8 and 128 characters",
		)
	}
	return nil
})
