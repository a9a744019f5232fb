package version

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHandler_GetVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/version", NewHandler().GetVersion)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}
	var body struct {
		Data struct {
			Version   string `json:"version"`
			GoVersion string `json:"goVersion"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.Data.Version == "" || body.Data.GoVersion == "" {
		t.Errorf("版本信息不完整: %+v", body.Data)
	}
	if w.Header().Get("X-App-Version") == "" {
		t.Error("缺少 X-App-Version 头")
	}
}
