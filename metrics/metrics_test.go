// ABOUTME: Tests for request metrics middleware and the /metrics exposition server.
// ABOUTME: Counts series through testutil and scrapes the handler over httptest.
package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRoutedHandler(c *Collectors) http.Handler {
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	return r
}

func TestMiddlewareCountsByRouteAndStatus(t *testing.T) {
	c := New()
	h := newRoutedHandler(c)

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "/", "200")); got != 3 {
		t.Errorf("expected 3 requests for /, got %v", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "/missing", "404")); got != 1 {
		t.Errorf("expected 1 request for /missing, got %v", got)
	}
}

func TestMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	c := New()
	h := newRoutedHandler(c)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/2", nil))

	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", unmatchedRoute, "404")); got != 2 {
		t.Errorf("expected 2 unmatched requests, got %v", got)
	}
}

func TestMetricsServerExposesCounters(t *testing.T) {
	c := New()
	newRoutedHandler(c).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	srv := c.NewServer("127.0.0.1:0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "sketchpad_http_requests_total") {
		t.Errorf("expected request counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(body, "sketchpad_http_request_duration_seconds") {
		t.Error("expected duration histogram in exposition")
	}
}
