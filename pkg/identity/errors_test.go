package identity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	t.Parallel()

	t.Run("matches by code", func(t *testing.T) {
		t.Parallel()

		err := &Error{Code: CodeTokenExpired, Message: "refresh token rejected"}
		require.ErrorIs(t, err, &Error{Code: CodeTokenExpired})
		require.False(t, errors.Is(err, &Error{Code: CodeNetworkError}))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("login: %w", &Error{Code: CodeInvalidCredentials, Message: "nope"})
		require.ErrorIs(t, err, &Error{Code: CodeInvalidCredentials})
		require.Equal(t, CodeInvalidCredentials, CodeOf(err))
	})

	t.Run("access sentinels stay distinguishable", func(t *testing.T) {
		t.Parallel()

		require.False(t, errors.Is(ErrForbidden, ErrNotAuthenticated))
		require.False(t, errors.Is(ErrNotAuthenticated, ErrForbidden))
		// Both still match a bare code sentinel.
		require.ErrorIs(t, ErrForbidden, &Error{Code: CodeInsufficientPermissions})
		require.ErrorIs(t, ErrNotAuthenticated, &Error{Code: CodeInsufficientPermissions})
	})
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, CodeUserNotFound, normalizeCode("USER_NOT_FOUND"))
	require.Equal(t, CodeUnknown, normalizeCode("TEAPOT_ERROR"))
	require.Equal(t, CodeUnknown, normalizeCode(""))
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, CodeValidationError, CodeOf(&Error{Code: CodeValidationError}))
	require.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
}
