package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestNonce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/nonce" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req NonceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WalletAddress != "0xabc" {
			t.Fatalf("bad nonce request: %+v err=%v", req, err)
		}
		json.NewEncoder(w).Encode(NonceResponse{Nonce: "n-1", Message: "Sign in to Runera: n-1"})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).RequestNonce(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("request nonce: %v", err)
	}
	if resp.Nonce != "n-1" || resp.Message == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSubmitRunSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		json.NewEncoder(w).Encode(RunSubmitResponse{
			RunID:  "run-1",
			Status: RunStatusVerified,
			OnchainSync: &OnchainSync{
				Signature: "0xsig",
				Deadline:  1700000000,
				Stats:     ProfileStats{XP: 150, Level: 2, RunCount: 3},
			},
		})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).SubmitRun(context.Background(), "tok-1", RunSubmitRequest{
		DistanceMeters:  500,
		DurationSeconds: 60,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Status != RunStatusVerified || resp.OnchainSync == nil || resp.OnchainSync.Stats.XP != 150 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestStatusErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid run"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SubmitRun(context.Background(), "tok", RunSubmitRequest{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusBadRequest || statusErr.Message != "invalid run" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestUnreachableBackend(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if _, err := c.RequestNonce(context.Background(), "0xabc"); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if _, err := c.Health(context.Background()); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Health(context.Background())
	if err != nil || resp.Status != "ok" {
		t.Fatalf("health: %+v %v", resp, err)
	}
}
