package cardindex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sorenkv/cardvault-backend/internal/pkg/envelope"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func fastClient(baseURL string, t *testing.T) *client {
	c := NewClientWith(baseURL, &http.Client{Timeout: 5 * time.Second}, testLogger(t)).(*client)
	c.retry.InitialBackoff = time.Millisecond
	c.retry.MaxBackoff = 5 * time.Millisecond
	return c
}

func envelopeBody(data any) map[string]any {
	return map[string]any{
		"success": true,
		"status":  "success",
		"data":    data,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "2.0",
			"duration":  "12ms",
		},
	}
}

func TestListSetsNormalizesIdentifiers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/sets" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(envelopeBody([]any{
			map[string]any{"_id": "set-base1", "name": "Base Set", "series": "Original", "total_cards": 102},
			map[string]any{"_id": "set-jungle", "name": "Jungle", "series": "Original", "total_cards": 64},
		}))
	}))
	defer srv.Close()

	c := fastClient(srv.URL, t)
	sets, err := c.ListSets(context.Background())
	if err != nil {
		t.Fatalf("ListSets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	if sets[0].ID != "set-base1" || sets[0].TotalCards != 102 {
		t.Fatalf("identifier not mapped: %+v", sets[0])
	}
}

func TestGetCardRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(envelopeBody(map[string]any{
			"_id": "card-char1", "set_id": "set-base1", "name": "Charizard", "number": "4/102",
		}))
	}))
	defer srv.Close()

	c := fastClient(srv.URL, t)
	card, err := c.GetCard(context.Background(), "card-char1")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if card.ID != "card-char1" || card.Name != "Charizard" {
		t.Fatalf("unexpected card: %+v", card)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGetCardDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"status":  "error",
			"data":    nil,
			"meta":    map[string]any{"timestamp": "t", "version": "2.0", "duration": "1ms"},
			"error":   map[string]any{"message": "card missing", "code": "NOT_FOUND"},
		})
	}))
	defer srv.Close()

	c := fastClient(srv.URL, t)
	_, err := c.GetCard(context.Background(), "nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 attempt, got %d", got)
	}
}

func TestMalformedEnvelopeIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"sets": []any{}})
	}))
	defer srv.Close()

	c := fastClient(srv.URL, t)
	_, err := c.ListSets(context.Background())
	var fmtErr *envelope.InvalidFormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected InvalidFormatError, got %v", err)
	}
}

func TestErrorEnvelopeSurfacesUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"status":  "error",
			"data":    nil,
			"meta":    map[string]any{"timestamp": "t", "version": "2.0", "duration": "1ms"},
			"error":   map[string]any{"message": "index rebuild in progress", "code": "INDEX_BUSY"},
		})
	}))
	defer srv.Close()

	c := fastClient(srv.URL, t)
	c.retry.MaxRetries = 0
	_, err := c.ListSets(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "index rebuild in progress"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q in error, got %v", want, err)
	}
}
