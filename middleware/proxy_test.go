package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func peerEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(clientIP(r)))
	})
}

func fromPeer(h http.Handler, remote string, header map[string]string) string {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return serve(h, req).Body.String()
}

func TestTrustedProxies(t *testing.T) {
	h := TrustedProxies([]string{"10.0.0.0/8", "127.0.0.1", "nonsense"})(peerEcho())
	xff := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}

	assert.Equal(t, "203.0.113.7", fromPeer(h, "10.1.2.3:5000", xff))
	assert.Equal(t, "203.0.113.8", fromPeer(h, "127.0.0.1:5000", map[string]string{"X-Real-IP": "203.0.113.8"}))
	assert.Equal(t, "198.51.100.9", fromPeer(h, "198.51.100.9:5000", xff))
	assert.Equal(t, "10.1.2.3", fromPeer(h, "10.1.2.3:5000", nil))
}

func TestTrustedProxiesDisabledByDefault(t *testing.T) {
	h := TrustedProxies(nil)(peerEcho())
	assert.Equal(t, "10.1.2.3", fromPeer(h, "10.1.2.3:5000", map[string]string{"X-Forwarded-For": "203.0.113.7"}))
}
