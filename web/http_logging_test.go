// ABOUTME: Tests for the request logging middleware using logrus' test hook.
// ABOUTME: Checks the logged fields, level selection by status, and first-status capture.
package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestWebRequestLoggerRecordsFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := requestID(webRequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/static/x.js", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Message != "web request" {
		t.Errorf("unexpected message %q", entry.Message)
	}
	if entry.Level != logrus.InfoLevel {
		t.Errorf("expected info level, got %s", entry.Level)
	}
	if entry.Data["method"] != http.MethodGet {
		t.Errorf("expected method GET, got %v", entry.Data["method"])
	}
	if entry.Data["path"] != "/static/x.js" {
		t.Errorf("expected path /static/x.js, got %v", entry.Data["path"])
	}
	if entry.Data["status"] != http.StatusNotFound {
		t.Errorf("expected status 404, got %v", entry.Data["status"])
	}
	if entry.Data["bytes"] != len("missing") {
		t.Errorf("expected %d bytes, got %v", len("missing"), entry.Data["bytes"])
	}
	if id, _ := entry.Data["request_id"].(string); id == "" {
		t.Error("expected request_id field")
	}
}

func TestWebRequestLoggerDefaultsStatusOK(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := webRequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := hook.LastEntry().Data["status"]; got != http.StatusOK {
		t.Errorf("expected status 200, got %v", got)
	}
}

func TestWebRequestLoggerWarnsOnServerError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := webRequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if lvl := hook.LastEntry().Level; lvl != logrus.WarnLevel {
		t.Errorf("expected warn level, got %s", lvl)
	}
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.WriteHeader(http.StatusNotModified)
	rec.WriteHeader(http.StatusOK)

	if rec.status != http.StatusNotModified {
		t.Errorf("expected first status to stick, got %d", rec.status)
	}
}
