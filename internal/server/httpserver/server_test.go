package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/telemetry/metric"
)

func TestNew(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New(":8080", handler)
	if s.httpServer == nil {
		t.Fatal("httpServer is nil")
	}
	if s.httpServer.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout = 0, want a bound")
	}
	if s.Addr() != nil {
		t.Errorf("Addr() = %v before Start, want nil", s.Addr())
	}
}

func TestRouter_Healthz(t *testing.T) {
	tests := []struct {
		name       string
		health     func() error
		wantStatus int
		wantBody   string
	}{
		{"no health func", nil, http.StatusOK, "ok\n"},
		{"healthy", func() error { return nil }, http.StatusOK, "ok\n"},
		{"unhealthy", func() error { return errors.New("store unavailable") }, http.StatusServiceUnavailable, "store unavailable\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&RouterConfig{Health: tt.health})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("X-Request-ID header missing")
			}
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	reg.ConnOpened()
	router := NewRouter(&RouterConfig{Metrics: reg.Handler()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "respkv_connections_total 1") {
		t.Errorf("body does not contain respkv_connections_total 1:\n%s", rec.Body.String())
	}
}

func TestRouter_UnknownRoutes(t *testing.T) {
	router := NewRouter(&RouterConfig{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/metrics", http.StatusNotFound},
		{"GET", "/nope", http.StatusNotFound},
		{"POST", "/healthz", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestServer_StartShutdown(t *testing.T) {
	s := New("127.0.0.1:0", NewRouter(&RouterConfig{}))

	errc := make(chan error, 1)
	if err := s.Start(errc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	res, err := client.Get("http://" + s.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", res.StatusCode, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	select {
	case err := <-errc:
		t.Errorf("serve error = %v, want none", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServer_StartAddressInUse(t *testing.T) {
	first := New("127.0.0.1:0", http.NotFoundHandler())
	if err := first.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer first.Shutdown(context.Background())

	second := New(first.Addr().String(), http.NotFoundHandler())
	if err := second.Start(nil); err == nil {
		t.Error("Start() on a bound address error = nil, want error")
		_ = second.Shutdown(context.Background())
	}
}
