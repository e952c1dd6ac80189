package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ilog "github.com/amakane-hakari/tcache/internal/log"
)

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Fatalf("missing request id in context")
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("response header X-Request-ID missing")
	}

	// 既存IDを利用するケース
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set("X-Request-ID", "custom-id")
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req2)
	if rec2.Header().Get("X-Request-ID") != "custom-id" {
		t.Fatalf("should keep provided id")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	var logs bytes.Buffer
	l := ilog.New("info", "text", &logs)
	h := RecoverMiddleware(l)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Err == nil || env.Err.Code != CodeInternalError {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if !strings.Contains(logs.String(), "http.panic") {
		t.Fatalf("panic not logged: %q", logs.String())
	}
}

func TestAccessLog(t *testing.T) {
	var logs bytes.Buffer
	l := ilog.New("info", "text", &logs)
	h := AccessLog(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))

	out := logs.String()
	for _, want := range []string{"access.log", "status=418", "bytes=3", "path=/pot"} {
		if !strings.Contains(out, want) {
			t.Fatalf("access log %q missing %q", out, want)
		}
	}
}
