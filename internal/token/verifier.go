package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates presented tokens for its domain. Verification is
// stateless by default; a domain that supports logout additionally checks
// the session registry.
type Verifier struct {
	domain   Domain
	sessions *SessionRegistry
	now      func() time.Time
}

// VerifierOption configures Verifier behavior.
type VerifierOption func(*Verifier)

// WithRevocation makes the verifier reject tokens whose session is no
// longer present in the registry.
func WithRevocation(registry *SessionRegistry) VerifierOption {
	return func(v *Verifier) { v.sessions = registry }
}

// WithVerifierClock overrides the time source (useful for tests).
func WithVerifierClock(fn func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if fn != nil {
			v.now = fn
		}
	}
}

// NewVerifier constructs a Verifier for the given trust domain.
func NewVerifier(domain Domain, opts ...VerifierOption) *Verifier {
	ver := &Verifier{domain: domain, now: time.Now}
	for _, opt := range opts {
		opt(ver)
	}
	return ver
}

// Verify checks signature, expiry and token type, recovering the claims.
//
// Every failure mode except revocation collapses to ErrInvalidToken; the
// distinction between bad signature, malformed token and expiry is never
// leaked to unauthenticated callers.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return v.domain.Secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return v.now().UTC() }), jwt.WithIssuer(v.domain.Issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != v.domain.TokenType {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil ||
		!claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		return nil, ErrInvalidToken
	}
	// Token lifetime is enforced by the parser with the injected clock, but
	// the exclusive boundary matters here: a token is dead at exactly exp.
	if !v.now().UTC().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	if v.sessions != nil && claims.SessionID != "" {
		if _, live := v.sessions.Lookup(claims.SessionID); !live {
			return nil, ErrSessionRevoked
		}
	}
	return claims, nil
}
