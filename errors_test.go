package auth_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	auth "github.com/nexotv/nexo-auth"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured token expired error",
			err:      auth.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "Legacy token expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name:     "Different structured error",
			err:      auth.ErrIdentityNotFound,
			expected: false,
		},
		{
			name:     "Different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.IsTokenExpiredError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured malformed error",
			err:      auth.ErrTokenMalformed,
			expected: true,
		},
		{
			name:     "Legacy malformed error (string match)",
			err:      errors.New("token is malformed"),
			expected: true,
		},
		{
			name:     "Legacy missing JWT error (string match)",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "Different structured error",
			err:      auth.ErrTokenExpired,
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := auth.IsMalformedError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestStructuredErrorProperties(t *testing.T) {
	t.Run("ErrIdentityNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, auth.ErrIdentityNotFound.Category)
		assert.Equal(t, "identity not found", auth.ErrIdentityNotFound.Message)
	})

	t.Run("ErrMismatchedHashAndPassword", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrMismatchedHashAndPassword.Category)
		assert.Equal(t, auth.TextCodeInvalidCreds, auth.ErrMismatchedHashAndPassword.TextCode)
		assert.Equal(t, "email or password do not match", auth.ErrMismatchedHashAndPassword.Message)
	})

	t.Run("ErrEmailAlreadyExists", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryConflict, auth.ErrEmailAlreadyExists.Category)
		assert.Equal(t, auth.TextCodeEmailExists, auth.ErrEmailAlreadyExists.TextCode)
	})

	t.Run("ErrUserInactive", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrUserInactive.Category)
		assert.Equal(t, "user is inactive, talk with an admin", auth.ErrUserInactive.Message)
	})

	t.Run("ErrUnableToFindSession", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrUnableToFindSession.Category)
		assert.Equal(t, auth.TextCodeSessionNotFound, auth.ErrUnableToFindSession.TextCode)
	})

	t.Run("ErrNoEmptyString", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, auth.ErrNoEmptyString.Category)
		assert.Equal(t, auth.TextCodeEmptyPassword, auth.ErrNoEmptyString.TextCode)
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 200},
		{"validation", auth.ErrValidation, 400},
		{"conflict", auth.ErrEmailAlreadyExists, 409},
		{"bad credentials", auth.ErrMismatchedHashAndPassword, 400},
		{"inactive", auth.ErrUserInactive, 401},
		{"not found", auth.ErrIdentityNotFound, 404},
		{"expired", auth.ErrTokenExpired, 401},
		{"category only", goerrors.New("slow down", goerrors.CategoryRateLimit), 429},
		{"plain error", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.HTTPStatus(tt.err))
		})
	}
}
