package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetRealClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "多级代理取第一个", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, remoteAddr: "10.0.0.1:1234", want: "203.0.113.5"},
		{name: "X-Real-IP", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remoteAddr: "10.0.0.1:1234", want: "198.51.100.7"},
		{name: "非法头部被忽略", headers: map[string]string{"X-Forwarded-For": "unknown", "EO-Connecting-IP": "2001:db8::1"}, remoteAddr: "10.0.0.1:1234", want: "2001:db8::1"},
		{name: "回退到RemoteAddr", remoteAddr: "192.0.2.1:5678", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/", nil)
			c.Request.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := GetRealClientIP(c); got != tt.want {
				t.Errorf("GetRealClientIP() = %q, 期望 %q", got, tt.want)
			}
		})
	}
}
