package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"trustgate.org/internal/directory"
	"trustgate.org/internal/risk"
)

// Issuer authenticates credentials against the directory, computes the
// session risk score and signs a claims set for its domain.
type Issuer struct {
	domain   Domain
	dir      directory.Directory
	scorer   *risk.Scorer
	sessions *SessionRegistry
	now      func() time.Time
}

// IssuerOption configures Issuer behavior.
type IssuerOption func(*Issuer)

// WithSessions enables server-side session registration for later revocation.
func WithSessions(registry *SessionRegistry) IssuerOption {
	return func(i *Issuer) { i.sessions = registry }
}

// WithIssuerClock overrides the time source (useful for tests).
func WithIssuerClock(fn func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if fn != nil {
			i.now = fn
		}
	}
}

// NewIssuer constructs an Issuer for the given trust domain.
func NewIssuer(domain Domain, dir directory.Directory, scorer *risk.Scorer, opts ...IssuerOption) *Issuer {
	iss := &Issuer{
		domain: domain,
		dir:    dir,
		scorer: scorer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(iss)
	}
	return iss
}

// IssuedToken carries the signed token together with the claims actually
// embedded, so the caller can expose the risk score and expiry without
// re-parsing the token.
type IssuedToken struct {
	Token     string
	Claims    *Claims
	RiskScore float64
	ExpiresAt time.Time
}

// Issue verifies the credential and mints a signed token.
//
// Unknown username and wrong secret both collapse to ErrInvalidCredentials.
// Directory backend failures surface as directory.ErrUnavailable so the
// caller can retry.
func (i *Issuer) Issue(ctx context.Context, username, secret, deviceID string) (IssuedToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || secret == "" {
		return IssuedToken{}, ErrInvalidCredentials
	}

	identity, err := i.dir.FindIdentity(ctx, username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return IssuedToken{}, ErrInvalidCredentials
		}
		return IssuedToken{}, err
	}
	if err := directory.VerifyCredential(identity.CredentialHash, secret); err != nil {
		return IssuedToken{}, ErrInvalidCredentials
	}

	deviceID = strings.TrimSpace(deviceID)
	var device *directory.Device
	if deviceID != "" {
		device, err = i.dir.FindDevice(ctx, deviceID)
		if err != nil {
			if !errors.Is(err, directory.ErrNotFound) {
				return IssuedToken{}, err
			}
			device = nil
		}
	}

	now := i.now().UTC()
	score := i.scorer.Score(identity.BaselineRisk, device, deviceID != "", now.Hour())

	claims := &Claims{
		Role:       identity.Role,
		Department: identity.Department,
		RiskScore:  risk.Round2(score),
		TokenType:  i.domain.TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.domain.Issuer,
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.domain.TTL)),
			ID:        uuid.NewString(),
		},
	}
	if deviceID != "" {
		claims.DeviceID = deviceID
		claims.DeviceType = "unknown"
		if device != nil {
			claims.DeviceType = device.Type
			claims.DeviceTrustLevel = device.TrustLevel
		}
	}
	if i.sessions != nil {
		sessionID, err := NewSessionID()
		if err != nil {
			return IssuedToken{}, err
		}
		claims.SessionID = sessionID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.domain.Secret)
	if err != nil {
		return IssuedToken{}, err
	}
	if i.sessions != nil {
		i.sessions.Register(claims)
	}

	return IssuedToken{
		Token:     signed,
		Claims:    claims,
		RiskScore: claims.RiskScore,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
