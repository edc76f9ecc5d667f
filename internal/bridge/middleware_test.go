package bridge

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecoveryMiddlewareWritesEnvelope(t *testing.T) {
	handler := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), testLogger())

	w := doRequest(handler, http.MethodGet, "/anything", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	resp := decodeMap(t, w)
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
	if resp["error"] == "" || resp["error"] == nil {
		t.Error("error message missing")
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	handler := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}), testLogger())

	w := doRequest(handler, http.MethodGet, "/", "")
	if seen == "" {
		t.Error("handler saw no request ID")
	}
	if got := w.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("X-Request-ID header = %q, want %q", got, seen)
	}
}

func TestRequestIDReused(t *testing.T) {
	handler := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "caller-id-1" {
		t.Errorf("X-Request-ID header = %q, want caller-id-1", got)
	}
}

func TestCORSHeadersPresent(t *testing.T) {
	handler := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), testLogger())

	w := doRequest(handler, http.MethodGet, "/", "")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("Allow-Methods header missing")
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("Allow-Headers header missing")
	}
}

func TestOptionsNeverReachesHandler(t *testing.T) {
	reached := false
	handler := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}), testLogger())

	w := doRequest(handler, http.MethodOptions, "/api/whatever", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if reached {
		t.Error("OPTIONS request reached the handler")
	}
}
