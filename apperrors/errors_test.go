package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("loading cart: %w", apperrors.NotFound("Cart"))

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, errors.Is(err, apperrors.ErrValidation))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Cart not found", appErr.Message)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := apperrors.Wrap(apperrors.ErrInvalidState, "cannot persist", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, "cannot persist: disk full", err.Error())
}

type payload struct {
	Name     string  `validate:"required"`
	Email    string  `validate:"required,email"`
	Password string  `validate:"required,min=8"`
	Price    float64 `validate:"gte=0.01"`
	Category string  `validate:"omitempty,uuid"`
}

func TestFromValidatorBuildsFieldMessages(t *testing.T) {
	v := validator.New()
	err := v.Struct(payload{Email: "nope", Password: "short", Category: "x"})
	require.Error(t, err)

	converted := apperrors.FromValidator(err)
	appErr, ok := apperrors.As(converted)
	require.True(t, ok)

	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, map[string]string{
		"Name":     "Name is required",
		"Email":    "Email is not valid",
		"Password": "Password must be at least 8 characters long",
		"Price":    "Price must be at least 0.01",
		"Category": "Category must be a valid UUID",
	}, appErr.Fields)
}

func TestFromValidatorPassesOtherErrorsThrough(t *testing.T) {
	other := errors.New("boom")
	assert.Same(t, other, apperrors.FromValidator(other))
}
