package errclass

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
)

func TestClassify_Buckets(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		input     any
		wantType  Type
		retryable bool
	}{
		{"network", errors.New("fetch failed: network unreachable"), TypeNetwork, true},
		{"timeout", errors.New("request timed out after 30s"), TypeNetwork, true},
		{"cors", errors.New("blocked by CORS policy"), TypeNetwork, true},
		{"bad request", errors.New("400 bad request"), TypeValidation, false},
		{"unauthorized", errors.New("401: invalid token"), TypeAuthentication, false},
		{"forbidden", errors.New("403 forbidden"), TypeAuthorization, false},
		{"not found", errors.New("card not found"), TypeAPI, false},
		{"rate limit", errors.New("429 too many requests"), TypeRateLimit, true},
		{"server", errors.New("503 service unavailable"), TypeServer, true},
		{"validation keyword", errors.New("grade is required"), TypeValidation, false},
		{"client bug", errors.New("cannot read properties of undefined"), TypeClient, false},
		{"unknown", errors.New("weird condition"), TypeUnknown, false},
		{"nil", nil, TypeUnknown, false},
		{"string input", "connection refused", TypeNetwork, true},
		{"json error block", map[string]any{"message": "set not found"}, TypeAPI, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.input, "test")
			if got.Type != tc.wantType {
				t.Fatalf("Type = %s, want %s", got.Type, tc.wantType)
			}
			if got.Retryable != tc.retryable {
				t.Fatalf("Retryable = %v, want %v", got.Retryable, tc.retryable)
			}
			if got.UserMessage == "" {
				t.Fatal("UserMessage must never be empty")
			}
		})
	}
}

// A message matching several patterns classifies by the earliest pattern:
// "network" precedes "404" in the list.
func TestClassify_OrderIsTieBreak(t *testing.T) {
	c := New()
	got := c.Classify(errors.New("network request to /cards returned 404"), "")
	if got.Type != TypeNetwork {
		t.Fatalf("Type = %s, want %s (pattern order governs)", got.Type, TypeNetwork)
	}
}

func TestClassify_StatusFallback(t *testing.T) {
	c := New()

	tests := []struct {
		status   int
		wantType Type
	}{
		{401, TypeAuthentication},
		{403, TypeAuthorization},
		{429, TypeRateLimit},
		{418, TypeAPI},
		{500, TypeServer},
		{502, TypeServer},
	}
	for _, tc := range tests {
		// Message carries no recognizable keywords, so only the numeric
		// status can classify it.
		err := apierr.New(tc.status, "x", errors.New("zzz"))
		got := c.Classify(err, "")
		if got.Type != tc.wantType {
			t.Fatalf("status %d: Type = %s, want %s", tc.status, got.Type, tc.wantType)
		}
	}

	// Wrapped apierr still classifies.
	wrapped := fmt.Errorf("sync sets: %w", apierr.New(500, "zzz", errors.New("qqq")))
	if got := c.Classify(wrapped, ""); got.Type != TypeServer {
		t.Fatalf("wrapped: Type = %s, want %s", got.Type, TypeServer)
	}
}

func TestClassify_CarriesContext(t *testing.T) {
	c := New()
	got := c.Classify(errors.New("boom"), "catalog.sync")
	if got.Context != "catalog.sync" {
		t.Fatalf("Context = %q", got.Context)
	}
}

func TestMessageOf(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{errors.New("plain"), "plain"},
		{"str", "str"},
		{map[string]any{"message": "m"}, "m"},
		{map[string]any{"error": "e"}, "e"},
		{map[string]any{"detail": "d"}, "d"},
		{nil, ""},
		{42, "42"},
	}
	for _, tc := range tests {
		if got := MessageOf(tc.in); got != tc.want {
			t.Fatalf("MessageOf(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
