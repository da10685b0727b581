package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryDirectory is an in-memory Directory implementation. It backs the
// development deployments and tests; production points the same interface at
// the Postgres store.
type MemoryDirectory struct {
	mu         sync.RWMutex
	identities map[string]*Identity
	devices    map[string]*Device
}

var _ Directory = (*MemoryDirectory)(nil)

// NewMemoryDirectory returns an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		identities: make(map[string]*Identity),
		devices:    make(map[string]*Device),
	}
}

// SeedIdentity stores an identity, hashing the plaintext secret.
func (d *MemoryDirectory) SeedIdentity(username, secret, role, department string, baselineRisk float64) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if baselineRisk < 0 || baselineRisk > 1 {
		return fmt.Errorf("baseline risk %v outside [0,1]", baselineRisk)
	}
	hash, err := HashCredential(secret)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.identities[username] = &Identity{
		Username:       username,
		CredentialHash: hash,
		Role:           role,
		Department:     department,
		BaselineRisk:   baselineRisk,
	}
	return nil
}

// SeedDevice registers a device with an established trust level.
func (d *MemoryDirectory) SeedDevice(id, deviceType string, trustLevel float64) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("device id is required")
	}
	if trustLevel < 0 || trustLevel > 1 {
		return fmt.Errorf("trust level %v outside [0,1]", trustLevel)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices[id] = &Device{ID: id, Type: deviceType, TrustLevel: trustLevel}
	return nil
}

// FindIdentity looks up an identity by username.
func (d *MemoryDirectory) FindIdentity(ctx context.Context, username string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.identities[strings.TrimSpace(username)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// FindDevice looks up a device by id.
func (d *MemoryDirectory) FindDevice(ctx context.Context, deviceID string) (*Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.devices[strings.TrimSpace(deviceID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}
