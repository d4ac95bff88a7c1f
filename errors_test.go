package authcache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticationError_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrapAuthenticationError(cause)

	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "authentication failed: connection refused", err.Error())
}

func TestAuthenticationError_NoCause(t *testing.T) {
	err := &AuthenticationError{}

	assert.Equal(t, "authentication failed", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestWrapAuthenticationError_NoDoubleWrap(t *testing.T) {
	original := &AuthenticationError{Cause: errors.New("ldap timeout")}

	assert.Same(t, original, wrapAuthenticationError(original))

	// An AuthenticationError nested inside another error is surfaced rather
	// than wrapped again.
	wrapped := wrapAuthenticationError(errors.Join(errors.New("outer"), original))
	assert.Same(t, original, wrapped)
}
