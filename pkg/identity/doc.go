/*
Package identity is a client SDK for the identity service: it obtains,
stores, attaches, refreshes and invalidates bearer credentials, and
exposes the service's auth, profile and user-management operations as
typed Go calls.

# Client

Create a Client with at least an API URL. Tokens are persisted through a
credstore.Store; the default is in-memory.

	client, err := identity.New(identity.Config{
		APIURL:      "https://id.example.com",
		Credentials: credstore.NewFile(path),
	})

	user, err := client.Login(ctx, "a@b.com", "Secret1!")

Every authenticated call attaches the stored access token. On a 401 the
client makes exactly one refresh attempt, shared across all concurrent
requests via a single-flight guard, and retries the original request once
with the new token. If the refresh fails, stored credentials are cleared,
the configured OnTokenExpired callback fires once, and the original
failure is surfaced.

# Errors

Every failure is a *identity.Error carrying one code from a closed
taxonomy (INVALID_CREDENTIALS, TOKEN_EXPIRED, NETWORK_ERROR, ...).
Server codes outside the taxonomy collapse to UNKNOWN_ERROR. Use
errors.Is with a sentinel to branch on a code:

	if errors.Is(err, &identity.Error{Code: identity.CodeInvalidCredentials}) {
		// bad email or password
	}

# Access control

HasAccess and CheckAccess are pure predicates over a User snapshot: a
five-level role hierarchy (user < premium < moderator < admin <
super_admin) checked by level, and permissions checked by set membership.
They have no side effects and are safe to call on every render.

# Concurrency

A Client is safe for concurrent use. Note that state derived from
concurrently-initiated calls applies in completion order, not initiation
order; see the session package for how that is handled.
*/
package identity
