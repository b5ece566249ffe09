package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("Success_KeepsKind", func(t *testing.T) {
		err := Wrap(ErrNotFound, "product 42")

		assert.EqualError(t, err, "product 42: not found")
		assert.True(t, Is(err, ErrNotFound))
		assert.False(t, Is(err, ErrConflict))
	})

	t.Run("Success_Nested", func(t *testing.T) {
		err := Wrap(Wrap(ErrUnavailable, "redis"), "load cart")

		assert.EqualError(t, err, "load cart: redis: unavailable")
		assert.True(t, Is(err, ErrUnavailable))
	})

	t.Run("Success_NilStaysNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "ignored"))
	})
}

func TestKindsAreDistinct(t *testing.T) {
	kinds := []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrUnavailable}

	for i, a := range kinds {
		for j, b := range kinds {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}

func TestNew(t *testing.T) {
	err := New("email already registered")

	assert.EqualError(t, err, "email already registered")
	assert.False(t, Is(err, ErrConflict))
}
