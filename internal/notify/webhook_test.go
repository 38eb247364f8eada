package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayusman/gamesight/internal/detector"
)

func TestWebhook_Threshold(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := NewWebhook(Config{BaseURL: srv.URL, Path: "/api/webhooks/game-detected", Enabled: true}, nil)

	tests := []struct {
		confidence float64
		want       bool
	}{
		{0.71, true},
		{0.70, false},
		{0.0, false},
		{1.0, true},
	}

	for _, tt := range tests {
		before := hits.Load()
		got := hook.Notify(context.Background(), detector.Result{Game: "valorant", Confidence: tt.confidence, Method: detector.MethodTemplate})
		if got != tt.want {
			t.Errorf("confidence %.2f: sent = %v, want %v", tt.confidence, got, tt.want)
		}
		fired := hits.Load() != before
		if fired != tt.want {
			t.Errorf("confidence %.2f: request fired = %v, want %v", tt.confidence, fired, tt.want)
		}
	}
}

func TestWebhook_Request(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotType   string
		gotResult detector.Result
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotResult); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))
	defer srv.Close()

	hook := NewWebhook(Config{
		BaseURL: srv.URL + "/",
		Path:    "/api/webhooks/game-detected",
		APIKey:  "secret",
		Enabled: true,
	}, nil)

	result := detector.Result{Game: "minecraft", Confidence: 0.95, Method: detector.MethodOCR, Match: "mojang"}
	if !hook.Notify(context.Background(), result) {
		t.Fatal("expected notification to be sent")
	}

	if gotPath != "/api/webhooks/game-detected" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("authorization = %q, want bearer token", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("content type = %q", gotType)
	}
	if gotResult != result {
		t.Errorf("body = %+v, want %+v", gotResult, result)
	}
}

func TestWebhook_NoAPIKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	hook := NewWebhook(Config{BaseURL: srv.URL, Enabled: true}, nil)
	hook.Notify(context.Background(), detector.Result{Game: "cod", Confidence: 0.9, Method: detector.MethodTemplate})

	if gotAuth != "" {
		t.Errorf("authorization = %q, want none", gotAuth)
	}
}

func TestWebhook_FailuresAreSwallowed(t *testing.T) {
	result := detector.Result{Game: "league", Confidence: 0.95, Method: detector.MethodOCR}

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		hook := NewWebhook(Config{BaseURL: srv.URL, Enabled: true}, nil)
		if err := hook.Send(context.Background(), result); err == nil {
			t.Error("expected Send to report the status")
		}
		if hook.Notify(context.Background(), result) {
			t.Error("Notify should report false on failure")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		hook := NewWebhook(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Enabled: true}, nil)

		start := time.Now()
		if hook.Notify(context.Background(), result) {
			t.Error("Notify should report false on timeout")
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("Notify took %v, want bounded by timeout", elapsed)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		hook := NewWebhook(Config{BaseURL: "http://127.0.0.1:1", Enabled: true}, nil)
		if hook.Notify(context.Background(), result) {
			t.Error("Notify should report false when unreachable")
		}
	})
}

func TestWebhook_Disabled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	hook := NewWebhook(Config{BaseURL: srv.URL}, nil)
	result := detector.Result{Game: "fortnite", Confidence: 0.95, Method: detector.MethodOCR}

	if hook.Notify(context.Background(), result) {
		t.Error("disabled webhook should not send")
	}

	hook.SetEnabled(true)
	if !hook.Notify(context.Background(), result) {
		t.Error("enabled webhook should send")
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}
