package token

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// secret. The two are never distinguished externally.
	ErrInvalidCredentials = errors.New("token: invalid credentials")

	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed token, expiry, wrong token type. Collapsed into one
	// category so unauthenticated callers get no oracle.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrSessionRevoked indicates a correctly signed token whose session
	// was explicitly invalidated. Actionable by re-authenticating.
	ErrSessionRevoked = errors.New("token: session revoked")
)
