package adminserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/linekv/internal/telemetry/metric"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_Health(t *testing.T) {
	h := NewRouter(&RouterConfig{NodeID: "node-a", Version: "v0.1.0", Logger: discardLogger()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Header().Get("X-Request-ID"), "req-") {
		t.Errorf("X-Request-ID = %q, want generated req- id", rec.Header().Get("X-Request-ID"))
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" || body["node_id"] != "node-a" || body["version"] != "v0.1.0" {
		t.Errorf("body = %v", body)
	}
}

func TestRouter_Ready(t *testing.T) {
	var ready atomic.Bool
	h := NewRouter(&RouterConfig{Ready: ready.Load, Logger: discardLogger()})

	tests := []struct {
		name  string
		ready bool
		want  int
	}{
		{"not listening", false, http.StatusServiceUnavailable},
		{"listening", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ready.Store(tt.ready)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	rec := httptest.NewRecorder()
	NewRouter(&RouterConfig{Logger: discardLogger()}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("nil Ready status = %d, want 503", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	m := metric.NewRegistry()
	m.ConnectionsAccepted.Add(3)
	h := NewRouter(&RouterConfig{Metrics: m, Logger: discardLogger()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "linekv_connections_accepted_total 3") {
		t.Errorf("metrics output missing accepted counter:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewRouter(&RouterConfig{Logger: discardLogger()}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("metrics without registry status = %d, want 404", rec.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := NewRouter(&RouterConfig{Logger: discardLogger()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRequestID_Propagates(t *testing.T) {
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-from-client")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-from-client" {
		t.Errorf("X-Request-ID = %q, want req-from-client", got)
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover(discardLogger()), RequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	s := New("127.0.0.1:0", NewRouter(&RouterConfig{Logger: discardLogger()}), discardLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + s.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-s.Err():
		if err != nil {
			t.Errorf("serve error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StartBindError(t *testing.T) {
	s := New("256.0.0.1:0", http.NotFoundHandler(), discardLogger())
	if err := s.Start(); err == nil {
		t.Fatal("Start() expected bind error")
	}
	if s.Addr() != nil {
		t.Errorf("Addr() = %v, want nil", s.Addr())
	}
}
