package policy

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trustgate.org/internal/token"
)

var (
	businessHours = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	nightTime     = time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
)

func testClaims(subject, role, department string, riskScore float64) *token.Claims {
	return &token.Claims{
		Role:       role,
		Department: department,
		RiskScore:  riskScore,
		TokenType:  token.TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
	}
}

func withDevice(c *token.Claims, deviceID string, trust float64) *token.Claims {
	c.DeviceID = deviceID
	c.DeviceType = "laptop"
	c.DeviceTrustLevel = trust
	return c
}

func TestAdminLowRiskExportAllowed(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := testClaims("admin", "admin", "it", 0.1)
	decision, rule := e.Evaluate(claims, "/export", "GET", businessHours)
	if decision != Allow {
		t.Fatalf("expected allow, got %v (rule %s)", decision, rule)
	}
}

func TestContractorDeniedOnSensitivePath(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := testClaims("contractor", "contractor", "external", 0.2)
	decision, rule := e.Evaluate(claims, "/export", "GET", businessHours)
	if decision != Deny {
		t.Fatalf("expected deny, got %v", decision)
	}
	if rule != "sensitive-resource" {
		t.Fatalf("expected sensitive-resource to fire, got %s", rule)
	}
}

func TestHighRiskChallengesFirst(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := testClaims("analyst", "analyst", "analytics", 0.75)
	for _, path := range []string{"/resource", "/export", "/admin", "/anything"} {
		decision, rule := e.Evaluate(claims, path, "GET", businessHours)
		if decision != Challenge {
			t.Fatalf("path %s: expected challenge, got %v", path, decision)
		}
		if rule != "risk-ceiling" {
			t.Fatalf("path %s: risk ceiling must fire before anything else, got %s", path, rule)
		}
	}
}

func TestRiskCeilingBoundaryIsExclusive(t *testing.T) {
	e := NewEngine(DefaultConfig())
	// Exactly at the threshold the ceiling does not fire; the unknown
	// device (trust never established) falls through to first contact.
	claims := withDevice(testClaims("analyst", "analyst", "analytics", 0.7), "mystery-device", 0.0)
	decision, rule := e.Evaluate(claims, "/resource", "GET", businessHours)
	if decision != Challenge {
		t.Fatalf("expected challenge, got %v", decision)
	}
	if rule == "risk-ceiling" {
		t.Fatalf("risk ceiling must not fire at exactly the threshold")
	}
}

func TestAfterHoursChallenge(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := testClaims("local", "local_user", "local_dept", 0.35)
	decision, rule := e.Evaluate(claims, "/resource", "GET", nightTime)
	if decision != Challenge {
		t.Fatalf("expected challenge, got %v", decision)
	}
	if rule != "after-hours" {
		t.Fatalf("expected after-hours to fire, got %s", rule)
	}
}

func TestContractorDeniedAfterHours(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := testClaims("contractor", "contractor", "external", 0.1)
	decision, rule := e.Evaluate(claims, "/resource", "GET", nightTime)
	if decision != Deny {
		t.Fatalf("expected deny, got %v", decision)
	}
	if rule != "after-hours" {
		t.Fatalf("expected after-hours to fire, got %s", rule)
	}
}

func TestUntrustedDeviceChallenge(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := withDevice(testClaims("analyst", "analyst", "analytics", 0.45), "old-laptop", 0.3)
	decision, rule := e.Evaluate(claims, "/resource", "GET", businessHours)
	if decision != Challenge {
		t.Fatalf("expected challenge, got %v", decision)
	}
	if rule != "untrusted-device" {
		t.Fatalf("expected untrusted-device to fire, got %s", rule)
	}
}

func TestDepartmentRestrictionOnAdminNamespace(t *testing.T) {
	e := NewEngine(DefaultConfig())
	// Admin-capable role from a non-authorized department passes the
	// sensitive gate but is stopped by the departmental rule.
	claims := testClaims("manager", "manager", "sales", 0.1)
	decision, rule := e.Evaluate(claims, "/admin", "GET", businessHours)
	if decision != Deny {
		t.Fatalf("expected deny, got %v", decision)
	}
	if rule != "department" {
		t.Fatalf("expected department to fire, got %s", rule)
	}
}

func TestContractorRiskCeiling(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := withDevice(testClaims("contractor", "contractor", "external", 0.55), "mac-001", 0.9)
	decision, rule := e.Evaluate(claims, "/resource", "GET", businessHours)
	if decision != Challenge {
		t.Fatalf("expected challenge, got %v", decision)
	}
	if rule != "contractor-ceiling" {
		t.Fatalf("expected contractor-ceiling to fire, got %s", rule)
	}
}

func TestFirstContactChallenge(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := withDevice(testClaims("analyst", "analyst", "analytics", 0.3), "never-seen", 0.0)
	decision, rule := e.Evaluate(claims, "/resource", "GET", businessHours)
	if decision != Challenge {
		t.Fatalf("expected challenge, got %v", decision)
	}
	if rule != "first-contact" {
		t.Fatalf("expected first-contact to fire, got %s", rule)
	}
}

func TestDefaultAllow(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := withDevice(testClaims("analyst", "analyst", "analytics", 0.1), "mac-001", 0.9)
	decision, rule := e.Evaluate(claims, "/resource", "GET", businessHours)
	if decision != Allow {
		t.Fatalf("expected allow, got %v (rule %s)", decision, rule)
	}
	if rule != "default" {
		t.Fatalf("expected default, got %s", rule)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := withDevice(testClaims("analyst", "analyst", "analytics", 0.45), "old-laptop", 0.3)
	d1, r1 := e.Evaluate(claims, "/resource", "GET", businessHours)
	d2, r2 := e.Evaluate(claims, "/resource", "GET", businessHours)
	if d1 != d2 || r1 != r2 {
		t.Fatalf("evaluation is not idempotent: (%v,%s) vs (%v,%s)", d1, r1, d2, r2)
	}
}

func TestDecisionMonotonicInRisk(t *testing.T) {
	e := NewEngine(DefaultConfig())
	// Raising the risk score with everything else fixed must never flap
	// back to allow once a stricter verdict has been reached.
	seenStricter := false
	for i := 0; i <= 100; i++ {
		rs := float64(i) / 100
		claims := testClaims("analyst", "analyst", "analytics", rs)
		decision, _ := e.Evaluate(claims, "/resource", "GET", businessHours)
		if decision != Allow {
			seenStricter = true
		} else if seenStricter {
			t.Fatalf("decision flapped back to allow at risk %v", rs)
		}
	}
	if !seenStricter {
		t.Fatalf("expected a stricter verdict somewhere in the sweep")
	}
}

func TestDecisionIsTotal(t *testing.T) {
	e := NewEngine(DefaultConfig())
	roles := []string{"admin", "manager", "analyst", "contractor", "guest", ""}
	paths := []string{"/resource", "/export", "/admin", "/sensitive", "/admin/users", "", "/x"}
	risks := []float64{-0.5, 0.0, 0.2, 0.45, 0.7, 0.9, 1.5}
	for _, role := range roles {
		for _, path := range paths {
			for _, rs := range risks {
				claims := testClaims("u", role, "analytics", rs)
				decision, rule := e.Evaluate(claims, path, "GET", nightTime)
				if decision != Allow && decision != Challenge && decision != Deny {
					t.Fatalf("non-total decision %v (role=%s path=%s risk=%v)", decision, role, path, rs)
				}
				if rule == "" {
					t.Fatalf("missing rule name (role=%s path=%s risk=%v)", role, path, rs)
				}
			}
		}
	}
}

func TestOutOfRangeRiskClampedOnRead(t *testing.T) {
	e := NewEngine(DefaultConfig())
	claims := testClaims("analyst", "analyst", "analytics", 3.0)
	decision, rule := e.Evaluate(claims, "/resource", "GET", businessHours)
	if decision != Challenge || rule != "risk-ceiling" {
		t.Fatalf("expected clamped score to hit the risk ceiling, got %v (%s)", decision, rule)
	}
}

func TestLocalConfigAdminGate(t *testing.T) {
	e := NewEngine(LocalConfig())
	local := testClaims("local", "local_user", "local_dept", 0.1)
	decision, rule := e.Evaluate(local, "/local-admin", "GET", businessHours)
	if decision != Deny {
		t.Fatalf("expected deny for non-admin local role, got %v (%s)", decision, rule)
	}

	admin := testClaims("admin", "local_admin", "local_dept", 0.0)
	decision, rule = e.Evaluate(admin, "/local-admin", "GET", businessHours)
	if decision != Allow {
		t.Fatalf("expected allow for local_admin, got %v (%s)", decision, rule)
	}
}

func TestDecisionString(t *testing.T) {
	if Allow.String() != "allow" || Challenge.String() != "challenge" || Deny.String() != "deny" {
		t.Fatalf("unexpected decision strings: %s %s %s", Allow, Challenge, Deny)
	}
}
