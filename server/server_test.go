package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/pharmacy-api/config"
	"github.com/giygas/pharmacy-api/data"
	"github.com/giygas/pharmacy-api/handlers"
	"github.com/giygas/pharmacy-api/health"
	"github.com/giygas/pharmacy-api/storage"
	"github.com/giygas/pharmacy-api/validation"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		Address:           "127.0.0.1",
		Env:               config.EnvTest,
		LogLevel:          "info",
		MaxRequestBody:    1048576,
		MaxHeaderSize:     1048576,
		AutosaveMinutes:   5,
		RateLimitRate:     1000,
		RateLimitCapacity: 100000,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *data.Pharmacy) {
	t.Helper()

	store := data.NewPharmacy(storage.NewFileStore(t.TempDir() + "/pharmacy_data.txt"))
	h := handlers.NewHTTPHandler(store, validation.NewInputValidator(),
		health.NewHealthChecker(store, time.Duration(cfg.AutosaveMinutes)*time.Minute))

	s := NewServer(cfg, h)
	t.Cleanup(s.rateLimiter.Stop)
	return s, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	if s.server.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", s.server.Addr)
	}
	if s.server.MaxHeaderBytes != 1048576 {
		t.Errorf("MaxHeaderBytes = %d", s.server.MaxHeaderBytes)
	}
	if s.Router() == nil {
		t.Fatal("router should be configured")
	}
}

func TestEndToEndOrderFlow(t *testing.T) {
	s, store := newTestServer(t, testConfig())
	router := s.Router()

	steps := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/medicines", `{"name":"Aspirin","quantity":100,"price":"2.50","expiry_date":"2026-12","shelf":"A1"}`, http.StatusCreated},
		{http.MethodPost, "/medicines", `{"name":"Aspirin","quantity":50,"price":"2.50","expiry_date":"2026-12","shelf":"A1"}`, http.StatusCreated},
		{http.MethodGet, "/medicines/Aspirin", "", http.StatusOK},
		{http.MethodGet, "/medicines/Ibuprofen", "", http.StatusNotFound},
		{http.MethodPost, "/orders", `{"name":"Aspirin","quantity":30,"price":"3.00"}`, http.StatusCreated},
		{http.MethodPost, "/orders", `{"name":"Ibuprofen","quantity":1,"price":"1.00"}`, http.StatusCreated},
		{http.MethodGet, "/orders", "", http.StatusOK},
		{http.MethodPost, "/orders/process", "", http.StatusOK},
		{http.MethodPost, "/orders/process", "", http.StatusOK},
		{http.MethodPatch, "/medicines/Aspirin", `{"field":"shelf","value":"B7"}`, http.StatusOK},
		{http.MethodPost, "/admin/save", "", http.StatusOK},
	}

	for _, step := range steps {
		rr := do(t, router, step.method, step.path, step.body)
		if rr.Code != step.status {
			t.Fatalf("%s %s: expected %d, got %d: %s", step.method, step.path, step.status, rr.Code, rr.Body.String())
		}
	}

	m, ok := store.FindMedicine("Aspirin")
	if !ok || m.Quantity != 120 || m.Shelf != "B7" {
		t.Errorf("unexpected Aspirin record: %+v", m)
	}
	if store.Stats().Dirty {
		t.Error("inventory should be clean after /admin/save")
	}

	rr := do(t, router, http.MethodGet, "/medicines", "")
	var list []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected one record, got %d", len(list))
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	router := s.Router()

	rr := do(t, router, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/health: expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected health body: %s", rr.Body.String())
	}

	do(t, router, http.MethodGet, "/medicines", "")
	rr = do(t, router, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics: expected 200, got %d", rr.Code)
	}
	for _, want := range []string{"http_request_total", "pharmacy_inventory_records"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("/metrics output missing %s", want)
		}
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	router := s.Router()

	if rr := do(t, router, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
	if rr := do(t, router, http.MethodDelete, "/medicines/Aspirin", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestRedirectSlashes(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rr := do(t, s.Router(), http.MethodGet, "/orders/", "")
	if rr.Code != http.StatusMovedPermanently {
		t.Errorf("expected 301, got %d", rr.Code)
	}
}

func TestRequestIDHeaderPropagates(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "test-request-123")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestForwardedHeadersNeedTrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		wantSecond int
	}{
		{"direct clients cannot spoof", false, http.StatusTooManyRequests},
		{"proxy supplies client address", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.RateLimitRate = 0.001
			cfg.RateLimitCapacity = 10
			cfg.TrustProxy = tt.trustProxy
			s, _ := newTestServer(t, cfg)

			var codes []int
			for _, forwarded := range []string{"203.0.113.5", "203.0.113.6"} {
				req := httptest.NewRequest(http.MethodPost, "/orders/process", nil)
				req.Header.Set("X-Forwarded-For", forwarded)
				rr := httptest.NewRecorder()
				s.Router().ServeHTTP(rr, req)
				codes = append(codes, rr.Code)
			}

			if codes[0] != http.StatusOK || codes[1] != tt.wantSecond {
				t.Errorf("codes = %v, want [200 %d]", codes, tt.wantSecond)
			}
		})
	}
}

func TestShutdown(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown on idle server: %v", err)
	}
	// Stopping twice must be safe
	s.rateLimiter.Stop()
}
