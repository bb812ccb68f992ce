package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins []string) http.Handler {
	return CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORSWildcardEchoesOriginWithoutCredentials(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	w := httptest.NewRecorder()
	corsHandler([]string{"*"}).ServeHTTP(w, req)

	h := w.Result().Header
	if h.Get("Access-Control-Allow-Origin") != "https://evil.example.com" {
		t.Errorf("Allow-Origin = %q", h.Get("Access-Control-Allow-Origin"))
	}
	if h.Get("Access-Control-Allow-Credentials") != "" {
		t.Error("wildcard origins must never grant credentials")
	}
}

func TestCORSExplicitOriginGrantsCredentials(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")

	w := httptest.NewRecorder()
	corsHandler([]string{"https://app.example.com"}).ServeHTTP(w, req)

	h := w.Result().Header
	if h.Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", h.Get("Access-Control-Allow-Origin"))
	}
	if h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("explicit origin must grant credentials")
	}
}

func TestCORSUnlistedOriginGetsNoHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://other.example.com")

	w := httptest.NewRecorder()
	corsHandler([]string{"https://app.example.com"}).ServeHTTP(w, req)

	if w.Result().Header.Get("Access-Control-Allow-Origin") != "" {
		t.Error("unlisted origin must get no CORS headers")
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	t.Parallel()

	called := false
	h := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if called {
		t.Error("preflight must not reach the next handler")
	}
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d", w.Result().StatusCode)
	}
	if got := w.Result().Header.Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("preflight must advertise allowed headers")
	}
}
