package directory

import "time"

// Identity is a directory entry for a human or service account. Records are
// owned by the directory and read-only to the rest of the service.
type Identity struct {
	Username       string
	CredentialHash string
	Role           string
	Department     string
	BaselineRisk   float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Device is a registered endpoint with an established trust level.
// TrustLevel is in [0.0, 1.0], higher means more trusted.
type Device struct {
	ID         string
	Type       string
	TrustLevel float64
	LastSeen   time.Time
}
