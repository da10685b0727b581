package httpapi

import (
	"net/http"
	"time"

	"trustgate.org/internal/audit"
	"trustgate.org/internal/obs"
	"trustgate.org/internal/policy"
	"trustgate.org/internal/token"
)

// ResourceAPI serves protected resources. Every request runs through the
// decision engine; the handlers only map the verdict onto HTTP.
type ResourceAPI struct {
	mux      *http.ServeMux
	verifier *token.Verifier
	engine   *policy.Engine
	now      func() time.Time
	version  string
}

// NewResource wires the protected resource routes.
func NewResource(verifier *token.Verifier, engine *policy.Engine, version string) *ResourceAPI {
	a := &ResourceAPI{
		mux:      http.NewServeMux(),
		verifier: verifier,
		engine:   engine,
		now:      time.Now,
		version:  version,
	}
	a.mux.HandleFunc("/resource", a.handleResource)
	a.mux.HandleFunc("/export", a.handleExport)
	a.mux.HandleFunc("/admin", a.handleAdmin)
	a.mux.HandleFunc("/sensitive", a.handleSensitive)
	a.mux.HandleFunc("/status", a.handleStatus)
	a.mux.HandleFunc("/healthz", healthz("trustgate-resource", version))
	a.mux.HandleFunc("/readyz", readyz(ReadyProbe{}))
	a.mux.Handle("/metrics", obs.Handler())
	return a
}

var resourcePublicPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// Handler returns the fully wrapped handler for the server.
func (a *ResourceAPI) Handler() http.Handler {
	return chain(withBearerClaims(a.verifier, resourcePublicPaths, a.mux))
}

// enforce evaluates the decision engine for the request and writes the deny
// or challenge response itself. Returns the claims and true when the caller
// may proceed. The firing rule goes to the audit log only, never to the
// client.
func (a *ResourceAPI) enforce(w http.ResponseWriter, r *http.Request, path string) (*token.Claims, bool) {
	claims, ok := token.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return nil, false
	}
	decision, rule := a.engine.Evaluate(claims, path, r.Method, a.now())
	obs.ObserveDecision(decision.String(), rule)
	_ = audit.LogEvent(r.Context(), "access.decision", map[string]any{
		"path":     path,
		"method":   r.Method,
		"decision": decision.String(),
		"rule":     rule,
	})

	switch decision {
	case policy.Deny:
		writeError(w, r, http.StatusForbidden, "denied by context policy")
		return nil, false
	case policy.Challenge:
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "mfa_required",
			"reason": "context challenge",
		})
		return nil, false
	}
	return claims, true
}

func (a *ResourceAPI) handleResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := a.enforce(w, r, "/resource")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"subject": claims.Subject,
		"role":    claims.Role,
	})
}

func (a *ResourceAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.enforce(w, r, "/export"); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "export_ready"})
}

func (a *ResourceAPI) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := a.enforce(w, r, "/admin")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "admin_access_granted",
		"subject": claims.Subject,
		"role":    claims.Role,
	})
}

func (a *ResourceAPI) handleSensitive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.enforce(w, r, "/sensitive"); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "sensitive_data_accessed",
		"data":   "confidential information",
	})
}

// handleStatus echoes the verified claim context without policy evaluation.
func (a *ResourceAPI) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := token.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"user":               claims.Subject,
		"role":               claims.Role,
		"department":         claims.Department,
		"risk_score":         claims.RiskScore,
		"device_id":          claims.DeviceID,
		"device_trust_level": claims.DeviceTrustLevel,
	})
}
