package directory

import "context"

// Directory describes the identity and device lookups required by the token
// issuer. Lookups are side-effect free: a query never mutates the backend.
type Directory interface {
	FindIdentity(ctx context.Context, username string) (*Identity, error)
	FindDevice(ctx context.Context, deviceID string) (*Device, error)
}
