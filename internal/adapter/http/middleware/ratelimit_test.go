package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

func TestRateLimiter_PerClient(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	rl := NewRateLimiter(0.001, 1).WithMetrics(m)

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("1.2.3.4:1111"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send("1.2.3.4:2222"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request from same host to be throttled, got %d", code)
	}
	if code := send("5.6.7.8:1111"); code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", code)
	}

	if got := testutil.ToFloat64(m.RateLimitHits.WithLabelValues("1.2.3.4")); got != 1 {
		t.Fatalf("expected one rate limit hit, got %v", got)
	}
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "127.0.0.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "127.0.0.1:80", "10.0.0.3"},
		{"remote addr", nil, "192.168.1.1:5000", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getIP(req); got != tt.want {
				t.Fatalf("getIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter_CleanupLimiters(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("1.1.1.1")

	rl.CleanupLimiters(time.Hour)
	if len(rl.visitors) != 1 {
		t.Fatalf("recent visitor should be kept")
	}

	rl.visitors["1.1.1.1"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.CleanupLimiters(time.Hour)
	if len(rl.visitors) != 0 {
		t.Fatalf("idle visitor should be dropped")
	}
}
