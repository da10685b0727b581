package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trustgate.org/internal/directory"
	"trustgate.org/internal/policy"
	"trustgate.org/internal/risk"
	"trustgate.org/internal/token"
)

type resourceFixture struct {
	api    *ResourceAPI
	issuer *token.Issuer
}

func newResourceFixture(t *testing.T) *resourceFixture {
	t.Helper()
	dir := directory.NewMemoryDirectory()
	if err := directory.SeedPrimary(dir); err != nil {
		t.Fatalf("seed: %v", err)
	}
	domain, err := token.PrimaryDomain("test-secret")
	if err != nil {
		t.Fatalf("PrimaryDomain: %v", err)
	}
	issuer := token.NewIssuer(domain, dir, risk.NewScorer(risk.PrimaryConfig()),
		token.WithIssuerClock(fixedClock(testNoon)))
	verifier := token.NewVerifier(domain,
		token.WithVerifierClock(fixedClock(testNoon.Add(time.Minute))))

	api := NewResource(verifier, policy.NewEngine(policy.DefaultConfig()), "test")
	api.now = fixedClock(testNoon.Add(time.Minute))
	return &resourceFixture{api: api, issuer: issuer}
}

func (f *resourceFixture) login(t *testing.T, username, password, deviceID string) string {
	t.Helper()
	issued, err := f.issuer.Issue(context.Background(), username, password, deviceID)
	if err != nil {
		t.Fatalf("issue token for %s: %v", username, err)
	}
	return issued.Token
}

func (f *resourceFixture) get(t *testing.T, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	f.api.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rr.Body.String())
	}
	return body
}

func TestResourceAllowsLowRiskAdmin(t *testing.T) {
	f := newResourceFixture(t)
	tok := f.login(t, "admin", "admin", "")

	rr := f.get(t, "/resource", tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["status"] != "ok" || body["subject"] != "admin" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestExportAllowedForLowRiskAdmin(t *testing.T) {
	f := newResourceFixture(t)
	tok := f.login(t, "admin", "admin", "")

	rr := f.get(t, "/export", tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["status"] != "export_ready" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestExportDeniedForContractor(t *testing.T) {
	f := newResourceFixture(t)
	tok := f.login(t, "contractor", "contractor", "")

	rr := f.get(t, "/export", tok)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	// The client sees the verdict, never the rule that produced it.
	if _, leaked := body["rule"]; leaked {
		t.Fatalf("rule name leaked to client: %v", body)
	}
}

func TestUnknownDeviceTriggersStepUp(t *testing.T) {
	f := newResourceFixture(t)
	// analyst baseline 0.2 + unknown device 0.5 -> risk 0.7, trust never
	// established.
	tok := f.login(t, "analyst", "analyst", "rogue-device")

	rr := f.get(t, "/resource", tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["status"] != "mfa_required" {
		t.Fatalf("expected step-up response, got %v", body)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	f := newResourceFixture(t)
	rr := f.get(t, "/resource", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	f := newResourceFixture(t)
	rr := f.get(t, "/resource", "not-a-token")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != "invalid token" {
		t.Fatalf("verification failures must be generic, got %v", body)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	f := newResourceFixture(t)
	tok := f.login(t, "admin", "admin", "")

	// Re-point the verifier clock at exactly the expiry instant.
	domain, err := token.PrimaryDomain("test-secret")
	if err != nil {
		t.Fatalf("PrimaryDomain: %v", err)
	}
	f.api.verifier = token.NewVerifier(domain,
		token.WithVerifierClock(fixedClock(testNoon.Add(domain.TTL))))

	rr := f.get(t, "/resource", tok)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestStatusEchoesClaims(t *testing.T) {
	f := newResourceFixture(t)
	tok := f.login(t, "analyst", "analyst", "mac-001")

	rr := f.get(t, "/status", tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["user"] != "analyst" || body["device_id"] != "mac-001" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, leaked := body["access_token"]; leaked {
		t.Fatalf("token text must never be echoed")
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	f := newResourceFixture(t)
	rr := f.get(t, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
