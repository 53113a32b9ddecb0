package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/v1/verses/{chapter}/{verse}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"chapter":2,"verse":47}`))
	})
	r.Post("/v1/ask", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	h := newTestRouter()
	counter := HTTPRequestsTotal.WithLabelValues("GET", "/v1/verses/{chapter}/{verse}", "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/v1/verses/2/47", "/v1/verses/18/66"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, http.NoBody))
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("expected both verse lookups under one route label, got %f", got)
	}
}

func TestMiddleware_RecordsErrorStatus(t *testing.T) {
	h := newTestRouter()
	counter := HTTPRequestsTotal.WithLabelValues("POST", "/v1/ask", "502")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/v1/ask", http.NoBody))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected one 502 sample, got %f", got)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	h := newTestRouter()
	counter := HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/wp-admin/x.php", http.NoBody))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected unknown path under %q, got %f", unmatchedRoute, got)
	}
}

func TestMiddleware_ImplicitOKAndSize(t *testing.T) {
	h := newTestRouter()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/verses/2/47", http.NoBody))

	if n := testutil.CollectAndCount(HTTPResponseBytes); n == 0 {
		t.Error("expected response size observations")
	}
	if v := testutil.ToFloat64(HTTPInFlight); v != 0 {
		t.Errorf("in-flight gauge must return to zero, got %f", v)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	if got := routeLabel(httptest.NewRequest("GET", "/x", http.NoBody)); got != unmatchedRoute {
		t.Errorf("routeLabel = %q, want %q", got, unmatchedRoute)
	}
}
