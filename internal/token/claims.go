package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the fixed payload embedded into signed tokens. Optional fields
// carry omitempty tags; every consumer knows exactly which fields may be
// absent. Claims are immutable after signing.
type Claims struct {
	Role       string  `json:"role"`
	Department string  `json:"department"`
	RiskScore  float64 `json:"risk_score"`
	TokenType  string  `json:"typ"`

	DeviceID         string  `json:"device_id,omitempty"`
	DeviceType       string  `json:"device_type,omitempty"`
	DeviceTrustLevel float64 `json:"device_trust_level,omitempty"`

	// SessionID keys the server-side session registry for domains that
	// support logout. Opaque and unguessable; unrelated to the signature.
	SessionID string `json:"session_id,omitempty"`

	jwt.RegisteredClaims
}

// DevicePresented reports whether the session was opened with a device id.
func (c *Claims) DevicePresented() bool {
	return c.DeviceID != ""
}

// BoundedRiskScore returns the risk score clamped to [0.0, 1.0]. Tokens are
// validated before claims reach any consumer, so an out-of-range score is
// clamped on read rather than rejected.
func (c *Claims) BoundedRiskScore() float64 {
	switch {
	case c.RiskScore < 0:
		return 0
	case c.RiskScore > 1:
		return 1
	default:
		return c.RiskScore
	}
}
