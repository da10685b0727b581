package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"trustgate.org/internal/audit"
	"trustgate.org/internal/directory"
	"trustgate.org/internal/obs"
	"trustgate.org/internal/token"
)

// ReadyProbe pings the directory backend when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// IdPAPI is the HTTP surface of the identity provider domain.
type IdPAPI struct {
	mux        *http.ServeMux
	issuer     *token.Issuer
	readyProbe ReadyProbe
	version    string
}

// NewIdP wires the identity-provider routes.
func NewIdP(issuer *token.Issuer, rp ReadyProbe, version string) *IdPAPI {
	a := &IdPAPI{
		mux:        http.NewServeMux(),
		issuer:     issuer,
		readyProbe: rp,
		version:    version,
	}
	a.mux.HandleFunc("/login", a.handleLogin)
	a.mux.HandleFunc("/healthz", healthz("trustgate-idp", version))
	a.mux.HandleFunc("/readyz", readyz(rp))
	a.mux.Handle("/metrics", obs.Handler())
	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *IdPAPI) Handler() http.Handler {
	return chain(a.mux)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"device_id,omitempty"`
}

type loginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	RiskScore   float64 `json:"risk_score"`
	ExpiresIn   int64   `json:"expires_in"`
}

func (a *IdPAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	issued, err := a.issuer.Issue(r.Context(), req.Username, req.Password, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrInvalidCredentials):
			obs.ObserveLogin("primary", "invalid_credentials")
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, directory.ErrUnavailable):
			obs.ObserveLogin("primary", "directory_unavailable")
			writeError(w, r, http.StatusServiceUnavailable, "directory unavailable")
		default:
			obs.ObserveLogin("primary", "error")
			writeError(w, r, http.StatusInternalServerError, "login failed")
		}
		return
	}

	obs.ObserveLogin("primary", "ok")
	_ = audit.LogEvent(r.Context(), "token.issued", map[string]any{
		"subject":    issued.Claims.Subject,
		"risk_score": issued.RiskScore,
		"expires_at": issued.ExpiresAt.Format(time.RFC3339),
		"device":     issued.Claims.DevicePresented(),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: issued.Token,
		TokenType:   "bearer",
		RiskScore:   issued.RiskScore,
		ExpiresIn:   int64(time.Until(issued.ExpiresAt).Seconds()),
	})
}

// chain applies the shared middleware stack.
func chain(next http.Handler) http.Handler {
	h := MaxBodyBytes(next, 1<<20)
	h = RateLimit(h, 20, 40)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func healthz(service, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": service,
			"version": version,
		})
	}
}

func readyz(rp ReadyProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := rp.Check(r.Context()); err != nil {
			obs.SetReady(false)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
			})
			return
		}
		obs.SetReady(true)
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}
