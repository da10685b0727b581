package token

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// SessionRegistry maps session ids to the claims issued for them. It backs
// logout and revocation for domains that keep server-side session state.
// Entries for expired tokens are stale and ignorable; Purge drops them.
//
// Safe for concurrent use; per-key atomicity only, no cross-key ordering.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Claims
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Claims)}
}

// NewSessionID returns an opaque, unguessable session identifier.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Register stores the claims under their session id.
func (r *SessionRegistry) Register(claims *Claims) {
	if claims == nil || claims.SessionID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[claims.SessionID] = claims
}

// Lookup returns the claims registered for the session id.
func (r *SessionRegistry) Lookup(sessionID string) (*Claims, bool) {
	if sessionID == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	claims, ok := r.sessions[sessionID]
	return claims, ok
}

// Revoke removes a session. Best effort: revoking an unknown session is not
// an error.
func (r *SessionRegistry) Revoke(sessionID string) {
	if sessionID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Purge drops sessions whose tokens expired before now.
func (r *SessionRegistry) Purge(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, claims := range r.sessions {
		if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
