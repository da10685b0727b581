package httpapi

import (
	"errors"
	"net/http"
	"time"

	"trustgate.org/internal/audit"
	"trustgate.org/internal/directory"
	"trustgate.org/internal/obs"
	"trustgate.org/internal/policy"
	"trustgate.org/internal/token"
)

const localSessionCookie = "local_session"

// LocalAPI is the HTTP surface of the local service domain. It issues its
// own shorter-lived tokens, delivers them as HttpOnly cookies and keeps a
// server-side session registry so logout actually revokes.
type LocalAPI struct {
	mux      *http.ServeMux
	issuer   *token.Issuer
	verifier *token.Verifier
	engine   *policy.Engine
	sessions *token.SessionRegistry
	now      func() time.Time
	version  string
}

// NewLocal wires the local-service routes.
func NewLocal(issuer *token.Issuer, verifier *token.Verifier, engine *policy.Engine, sessions *token.SessionRegistry, version string) *LocalAPI {
	a := &LocalAPI{
		mux:      http.NewServeMux(),
		issuer:   issuer,
		verifier: verifier,
		engine:   engine,
		sessions: sessions,
		now:      time.Now,
		version:  version,
	}
	a.mux.HandleFunc("/local-login", a.handleLogin)
	a.mux.HandleFunc("/local-resource", a.handleResource)
	a.mux.HandleFunc("/local-admin", a.handleAdmin)
	a.mux.HandleFunc("/local-status", a.handleStatus)
	a.mux.HandleFunc("/local-logout", a.handleLogout)
	a.mux.HandleFunc("/healthz", healthz("trustgate-local", version))
	a.mux.HandleFunc("/readyz", readyz(ReadyProbe{}))
	a.mux.Handle("/metrics", obs.Handler())
	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *LocalAPI) Handler() http.Handler {
	return chain(a.mux)
}

type localLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"device_id,omitempty"`
}

func (a *LocalAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req localLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	issued, err := a.issuer.Issue(r.Context(), req.Username, req.Password, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrInvalidCredentials):
			obs.ObserveLogin("local", "invalid_credentials")
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, directory.ErrUnavailable):
			obs.ObserveLogin("local", "directory_unavailable")
			writeError(w, r, http.StatusServiceUnavailable, "directory unavailable")
		default:
			obs.ObserveLogin("local", "error")
			writeError(w, r, http.StatusInternalServerError, "login failed")
		}
		return
	}

	maxAge := int(issued.ExpiresAt.Sub(a.now()).Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     localSessionCookie,
		Value:    issued.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})

	obs.ObserveLogin("local", "ok")
	_ = audit.LogEvent(r.Context(), "local.session.issued", map[string]any{
		"subject":    issued.Claims.Subject,
		"risk_score": issued.RiskScore,
		"expires_at": issued.ExpiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "local_session_issued",
		"risk_score": issued.RiskScore,
		"expires_in": maxAge,
	})
}

// sessionClaims recovers claims from the session cookie. Revocation is
// checked by the verifier against the registry.
func (a *LocalAPI) sessionClaims(w http.ResponseWriter, r *http.Request) (*token.Claims, bool) {
	cookie, err := r.Cookie(localSessionCookie)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "missing local session")
		return nil, false
	}
	claims, err := a.verifier.Verify(cookie.Value)
	if err != nil {
		if errors.Is(err, token.ErrSessionRevoked) {
			writeError(w, r, http.StatusUnauthorized, "session revoked")
		} else {
			writeError(w, r, http.StatusUnauthorized, "invalid local session")
		}
		return nil, false
	}
	return claims, true
}

func (a *LocalAPI) enforce(w http.ResponseWriter, r *http.Request, claims *token.Claims, path string) bool {
	decision, rule := a.engine.Evaluate(claims, path, r.Method, a.now())
	obs.ObserveDecision(decision.String(), rule)
	_ = audit.LogEvent(token.ContextWithClaims(r.Context(), claims), "access.decision", map[string]any{
		"path":     path,
		"method":   r.Method,
		"decision": decision.String(),
		"rule":     rule,
	})

	switch decision {
	case policy.Deny:
		writeError(w, r, http.StatusForbidden, "denied by context policy")
		return false
	case policy.Challenge:
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "verification_required",
			"reason": "context challenge",
		})
		return false
	}
	return true
}

func (a *LocalAPI) handleResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := a.sessionClaims(w, r)
	if !ok {
		return
	}
	if !a.enforce(w, r, claims, "/local-resource") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok-local",
		"subject":    claims.Subject,
		"role":       claims.Role,
		"risk_score": claims.RiskScore,
		"department": claims.Department,
		"device_id":  claims.DeviceID,
	})
}

func (a *LocalAPI) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := a.sessionClaims(w, r)
	if !ok {
		return
	}
	if !a.enforce(w, r, claims, "/local-admin") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "admin_access_granted",
		"subject": claims.Subject,
	})
}

func (a *LocalAPI) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	cookie, err := r.Cookie(localSessionCookie)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "not_authenticated"})
		return
	}
	claims, err := a.verifier.Verify(cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "invalid_session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "authenticated",
		"user":               claims.Subject,
		"role":               claims.Role,
		"department":         claims.Department,
		"risk_score":         claims.RiskScore,
		"device_id":          claims.DeviceID,
		"device_trust_level": claims.DeviceTrustLevel,
	})
}

// handleLogout revokes the session best-effort and clears the cookie. A
// missing or invalid session is not an error here.
func (a *LocalAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if cookie, err := r.Cookie(localSessionCookie); err == nil {
		if claims, err := a.verifier.Verify(cookie.Value); err == nil && claims.SessionID != "" {
			a.sessions.Revoke(claims.SessionID)
			_ = audit.LogEvent(r.Context(), "local.session.revoked", map[string]any{
				"subject": claims.Subject,
			})
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     localSessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}
