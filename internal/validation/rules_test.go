package validation

import (
	"errors"
	"strings"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/storefront/internal/errors"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ann@example.com", true},
		{"first.last+cart@shop.co.uk", true},
		{"ann@example", false},
		{"@example.com", false},
		{"ann example@x.com", false},
		{" ann@example.com", false},
		{"", true}, // empty is left to Required
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := validation.Validate(tt.email, Email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, "must be a valid email address")
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("Keyboard", NotBlank))
	assert.EqualError(t, validation.Validate(" \t\n", NotBlank), "must not be blank")
}

func TestPassword(t *testing.T) {
	t.Run("Success_Bounds", func(t *testing.T) {
		assert.NoError(t, validation.Validate("12345678", Password))
		assert.NoError(t, validation.Validate(strings.Repeat("p", PasswordMaxLength), Password))
		assert.NoError(t, validation.Validate("", Password))
	})

	t.Run("Success_CountsRunesNotBytes", func(t *testing.T) {
		assert.NoError(t, validation.Validate("ñandú123", Password))
	})

	t.Run("Error_TooShort", func(t *testing.T) {
		assert.EqualError(t, validation.Validate("short", Password), "password must be between 8 and 128 characters")
	})

	t.Run("Error_TooLong", func(t *testing.T) {
		assert.Error(t, validation.Validate(strings.Repeat("p", PasswordMaxLength+1), Password))
	})
}

func TestWrapValidationError(t *testing.T) {
	t.Run("Success_Nil", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("Success_KeepsFieldMessages", func(t *testing.T) {
		input := struct{ Email string }{Email: "nope"}
		err := WrapValidationError(validation.ValidateStruct(&input,
			validation.Field(&input.Email, Email),
		))

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "Email: must be a valid email address")
	})
}
