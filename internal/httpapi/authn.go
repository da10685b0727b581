package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"trustgate.org/internal/token"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withBearerClaims verifies the bearer token and attaches its claims to the
// request context. Paths listed as public bypass verification.
func withBearerClaims(verifier *token.Verifier, public map[string]struct{}, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := public[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		claims, err := verifier.Verify(raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrSessionRevoked):
				writeError(w, r, http.StatusUnauthorized, "session revoked")
			default:
				writeError(w, r, http.StatusUnauthorized, "invalid token")
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(token.ContextWithClaims(r.Context(), claims)))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	raw := strings.TrimSpace(header[len(bearer):])
	if raw == "" {
		return "", errors.New("missing bearer token")
	}
	return raw, nil
}
