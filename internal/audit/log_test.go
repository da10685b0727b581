package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"trustgate.org/internal/obs"
	"trustgate.org/internal/token"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	logger.SetFlags(0)
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	claims := &token.Claims{
		Role:             "analyst",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "analyst"},
	}
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = token.ContextWithClaims(ctx, claims)

	if err := LogEvent(ctx, "access.decision", map[string]any{"decision": "deny", "rule": "department"}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["event"] != "access.decision" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["subject"] != "analyst" {
		t.Fatalf("unexpected subject: %v", entry["subject"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["rule"] != "department" {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatalf("expected error for empty event name")
	}
}
