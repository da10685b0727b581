package token

import (
	"errors"
	"strings"
	"time"
)

// Token type identifiers per trust domain. A token minted for one domain is
// never accepted by a verifier expecting another.
const (
	TypeAccess = "access"
	TypeLocal  = "local"
)

// Domain describes an independent trust boundary: its own signing secret,
// token type, issuer name and validity window.
type Domain struct {
	Name      string
	Issuer    string
	TokenType string
	Secret    []byte
	TTL       time.Duration
}

// PrimaryDomain returns the identity-provider domain with a 30 minute window.
func PrimaryDomain(secret string) (Domain, error) {
	return newDomain("primary", "trustgate-idp", TypeAccess, secret, 30*time.Minute)
}

// LocalDomain returns the local-service domain. Local tokens are shorter
// lived on purpose.
func LocalDomain(secret string) (Domain, error) {
	return newDomain("local", "trustgate-local", TypeLocal, secret, 15*time.Minute)
}

func newDomain(name, issuer, tokenType, secret string, ttl time.Duration) (Domain, error) {
	if strings.TrimSpace(secret) == "" {
		return Domain{}, errors.New("token: signing secret is not configured")
	}
	return Domain{
		Name:      name,
		Issuer:    issuer,
		TokenType: tokenType,
		Secret:    []byte(secret),
		TTL:       ttl,
	}, nil
}
