package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareLabelsUseRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Distinct path parameters must land in one series, keyed by the pattern.
	for _, path := range []string{"/widgets/aaa", "/widgets/bbb", "/widgets/ccc"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/widgets/{id}", "200"))
	if got != 3 {
		t.Errorf("requests_total{path=\"/widgets/{id}\"} = %v, want 3", got)
	}
}
