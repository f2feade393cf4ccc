package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp *time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: "u1"}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := Inspect(signedToken(t, &exp))
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.True(t, claims.ExpiresAt.Time.Equal(exp))

	_, err = Inspect("not-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, err := Expiry(signedToken(t, &exp))
	require.NoError(t, err)
	require.True(t, got.Equal(exp))

	_, err = Expiry(signedToken(t, nil))
	require.ErrorIs(t, err, ErrNoExpiry)
}

func TestExpiresWithin(t *testing.T) {
	t.Parallel()

	soon := time.Now().Add(10 * time.Second)
	later := time.Now().Add(time.Hour)

	require.True(t, ExpiresWithin(signedToken(t, &soon), time.Minute))
	require.False(t, ExpiresWithin(signedToken(t, &later), time.Minute))
	require.True(t, ExpiresWithin("garbage", time.Minute))
	require.True(t, ExpiresWithin(signedToken(t, nil), time.Minute))
}
