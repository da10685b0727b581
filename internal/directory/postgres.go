package directory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

var _ Directory = (*PGStore)(nil)

// PGStore implements Directory using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindIdentity(ctx context.Context, username string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select username, credential_hash, role, department, baseline_risk, created_at, updated_at
		   from identities where username=$1`, strings.TrimSpace(username),
	)
	var rec Identity
	if err := row.Scan(&rec.Username, &rec.CredentialHash, &rec.Role, &rec.Department,
		&rec.BaselineRisk, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrUnavailable, err)
	}
	return &rec, nil
}

func (s *PGStore) FindDevice(ctx context.Context, deviceID string) (*Device, error) {
	row := s.db.QueryRowContext(ctx,
		`select device_id, device_type, trust_level, last_seen
		   from devices where device_id=$1`, strings.TrimSpace(deviceID),
	)
	var rec Device
	if err := row.Scan(&rec.ID, &rec.Type, &rec.TrustLevel, &rec.LastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrUnavailable, err)
	}
	return &rec, nil
}
