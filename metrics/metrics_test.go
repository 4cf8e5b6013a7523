package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/medicines/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/medicines/{name}", "404"))

	for _, name := range []string{"Aspirin", "Zinc", "Ibuprofen"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/medicines/"+name, nil))
	}

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/medicines/{name}", "404"))
	if after-before != 3 {
		t.Errorf("http_request_total delta = %v, want 3", after-before)
	}
	if got := testutil.ToFloat64(HTTPRequestInFlight); got != 0 {
		t.Errorf("in-flight gauge = %v after requests, want 0", got)
	}
}
