package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"semester-manager/backend/config"
	"semester-manager/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

type fakeTokens struct {
	revoked bool
	err     error
}

func (f fakeTokens) IsBlacklisted(_ context.Context, _ string) (bool, error) {
	return f.revoked, f.err
}

func newJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "middleware-test-secret-123456",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newJWT()
	access, _ := mgr.GenerateAccessToken("user-1", "a@example.com")

	tests := []struct {
		name   string
		header string
		tokens TokenChecker
		want   int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"bad scheme", "Basic " + access, nil, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", nil, http.StatusUnauthorized},
		{"valid", "Bearer " + access, nil, http.StatusOK},
		{"lowercase bearer", "bearer " + access, nil, http.StatusOK},
		{"revoked", "Bearer " + access, fakeTokens{revoked: true}, http.StatusUnauthorized},
		{"blacklist error degrades", "Bearer " + access, fakeTokens{err: errors.New("redis down")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			r := gin.New()
			r.GET("/p", JWTAuth(mgr, tt.tokens), func(c *gin.Context) {
				gotUser = c.GetString(CtxUserID)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && gotUser != "user-1" {
				t.Errorf("user_id 未注入: %q", gotUser)
			}
		})
	}
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	t.Run("blocked", func(t *testing.T) {
		lim := &fakeLimiter{allowed: false}
		r := gin.New()
		r.POST("/login", RateLimit(lim, 5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", w.Code)
		}
		if w.Header().Get("Retry-After") != "60" {
			t.Errorf("Retry-After 错误: %q", w.Header().Get("Retry-After"))
		}
		if len(lim.keys) != 1 || !strings.HasSuffix(lim.keys[0], ":/login") {
			t.Errorf("限流 key 应包含路由: %v", lim.keys)
		}
	})

	t.Run("limiter error degrades", func(t *testing.T) {
		r := gin.New()
		r.POST("/login", RateLimit(&fakeLimiter{err: errors.New("redis down")}, 5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("nil limiter", func(t *testing.T) {
		r := gin.New()
		r.POST("/login", RateLimit(nil, 5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检应返回 204，got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("白名单 Origin 未回写")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = serve(r, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("非白名单 Origin 不应回写允许头")
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var got string
	r.GET("/x", func(c *gin.Context) {
		got = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := serve(r, req)
	if got != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("应沿用请求头中的 ID，got ctx=%q header=%q", got, w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	serve(r, req)
	if len(got) != 36 {
		t.Errorf("超长 ID 应重新生成 UUID，got %q", got)
	}
}

// ── Metrics ──

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/items/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/items/:id", "200")); got != 2 {
		t.Errorf("路由模板计数错误: %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("未匹配路由计数错误: %v", got)
	}
	if got := testutil.ToFloat64(m.inflight); got != 0 {
		t.Errorf("请求结束后 in-flight 应归零: %v", got)
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/x", BodyLimit(10), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("a", 100))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("ok")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
