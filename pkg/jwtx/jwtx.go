// Package jwtx inspects bearer tokens client-side. Tokens are decoded
// without signature verification: the service is the authority on
// validity, the client only reads timing claims to plan ahead.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed reports a token that is not a decodable JWT.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrNoExpiry reports a token without an exp claim.
	ErrNoExpiry = errors.New("jwtx: token has no expiry")
)

// Claims are the registered claims of an access token, read unverified.
type Claims struct {
	jwt.RegisteredClaims
}

// Inspect decodes the token's claims without verifying its signature.
func Inspect(token string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, ErrMalformed
	}
	return &claims, nil
}

// Expiry returns the token's exp claim.
func Expiry(token string) (time.Time, error) {
	claims, err := Inspect(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// ExpiresWithin reports whether the token expires within d. Malformed
// tokens and tokens without an expiry report true, so callers treat them
// as due for replacement.
func ExpiresWithin(token string, d time.Duration) bool {
	exp, err := Expiry(token)
	if err != nil {
		return true
	}
	return time.Until(exp) <= d
}
