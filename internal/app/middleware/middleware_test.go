package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/api/exif", ok)
	r.GET("/health", ok)
	return r
}

func TestRateLimit(t *testing.T) {
	r := newTestEngine(rateLimitHandler(newIPRateLimiter(1, 2)))

	tests := []struct {
		name string
		ip   string
		want int
	}{
		{name: "第一次请求", ip: "203.0.113.1", want: http.StatusOK},
		{name: "突发内的第二次", ip: "203.0.113.1", want: http.StatusOK},
		{name: "超出突发", ip: "203.0.113.1", want: http.StatusTooManyRequests},
		{name: "其他IP不受影响", ip: "203.0.113.2", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/exif", nil)
			req.Header.Set("X-Real-IP", tt.ip)
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("状态码 = %d, 期望 %d", w.Code, tt.want)
			}
		})
	}
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	now := time.Now()
	l := newIPRateLimiter(60, 1)
	l.now = func() time.Time { return now }
	l.allow("a")
	l.allow("b")

	now = now.Add(limiterIdleTTL + time.Second)
	l.allow("b")

	if removed := l.sweep(); removed != 1 {
		t.Errorf("sweep() = %d, 期望 1", removed)
	}
	if _, ok := l.limiters["b"]; !ok {
		t.Error("刚访问过的限流器不应被删除")
	}
}

func TestCors(t *testing.T) {
	r := newTestEngine(Cors())

	tests := []struct {
		name       string
		method     string
		path       string
		origin     string
		wantCode   int
		wantOrigin string
	}{
		{name: "预检请求", method: http.MethodOptions, path: "/api/exif", origin: "https://photo.example.com", wantCode: http.StatusNoContent, wantOrigin: "https://photo.example.com"},
		{name: "无Origin", method: http.MethodGet, path: "/api/exif", wantCode: http.StatusOK, wantOrigin: "*"},
		{name: "非API路由", method: http.MethodGet, path: "/health", origin: "https://photo.example.com", wantCode: http.StatusOK, wantOrigin: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			r.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Errorf("状态码 = %d, 期望 %d", w.Code, tt.wantCode)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, 期望 %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestNoCache(t *testing.T) {
	r := newTestEngine(NoCache())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("Pragma") != "no-cache" || w.Header().Get("Expires") != "0" {
		t.Errorf("缓存头 = %v", w.Header())
	}
}
