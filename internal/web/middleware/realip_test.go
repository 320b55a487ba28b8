package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func remoteAddrHandler(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = r.RemoteAddr
		w.WriteHeader(http.StatusOK)
	})
}

func TestTrustedRealIP_TrustedProxy(t *testing.T) {
	var got string
	handler := TrustedRealIP([]string{"10.0.0.0/8"})(remoteAddrHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Real-IP", "203.0.113.9")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.9" {
		t.Errorf("RemoteAddr = %q, want X-Real-IP honored from trusted proxy", got)
	}
}

func TestTrustedRealIP_UntrustedProxy(t *testing.T) {
	var got string
	handler := TrustedRealIP([]string{"10.0.0.0/8"})(remoteAddrHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	req.Header.Set("X-Real-IP", "203.0.113.9")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "198.51.100.7:5555" {
		t.Errorf("RemoteAddr = %q, spoofed header must be ignored", got)
	}
}

func TestTrustedRealIP_ForwardedForChain(t *testing.T) {
	var got string
	handler := TrustedRealIP([]string{"127.0.0.1"})(remoteAddrHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.9" {
		t.Errorf("RemoteAddr = %q, want first X-Forwarded-For hop", got)
	}
}

func TestTrustedRealIP_InvalidHeaderValue(t *testing.T) {
	var got string
	handler := TrustedRealIP([]string{"10.0.0.0/8"})(remoteAddrHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Real-IP", "not-an-ip")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "10.1.2.3:5555" {
		t.Errorf("RemoteAddr = %q, invalid header value must be ignored", got)
	}
}

func TestTrustedRealIP_NoProxiesConfigured(t *testing.T) {
	var got string
	handler := TrustedRealIP(nil)(remoteAddrHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Real-IP", "203.0.113.9")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "10.1.2.3:5555" {
		t.Errorf("RemoteAddr = %q, headers must be ignored with no trusted proxies", got)
	}
}
