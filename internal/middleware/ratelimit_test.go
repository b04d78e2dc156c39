package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// tightConfig はバースト2で即座に枯渇する設定を返す。
func tightConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    2,
		SubscribeRate:   rate.Limit(1.0 / 60.0),
		SubscribeBurst:  1,
		CleanupInterval: time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGeneralMiddleware_ExhaustsBurst(t *testing.T) {
	rl := NewRateLimiter(tightConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.RemoteAddr = "203.0.113.1:50000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.RemoteAddr = "203.0.113.1:50000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestGeneralMiddleware_LimitsPerIP(t *testing.T) {
	rl := NewRateLimiter(tightConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	// 1つ目のIPのバーストを使い切る
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.1:50000"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// 別IPは影響を受けない
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.2:50000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status for second IP = %d, want 200", rec.Code)
	}

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("limiter entries = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestSubscribeMiddleware_IndependentOfGeneral(t *testing.T) {
	rl := NewRateLimiter(tightConfig())
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	subscribe := rl.SubscribeMiddleware()(okHandler())

	// 購読側（バースト1）を枯渇させる
	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", nil)
	req.RemoteAddr = "203.0.113.1:50000"
	subscribe.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	subscribe.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("subscribe status = %d, want 429", rec.Code)
	}

	// API全般側は独立しており、まだ通る
	rec = httptest.NewRecorder()
	general.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("general status = %d, want 200", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"remote addr only", "203.0.113.1:50000", "", "203.0.113.1"},
		{"xff single value", "10.0.0.1:50000", "198.51.100.7", "198.51.100.7"},
		{"xff chain uses first hop", "10.0.0.1:50000", "198.51.100.7, 10.0.0.2, 10.0.0.3", "198.51.100.7"},
		{"xff with spaces", "10.0.0.1:50000", "  198.51.100.7  ", "198.51.100.7"},
		{"unparseable remote addr", "not-an-addr", "", "not-an-addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
