package photo_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
	"github.com/yzcheng90/Photography-vue/pkg/service/photo_info"
)

type fakePhotoService struct {
	photos  []model.Photo
	cleared int
}

func (f *fakePhotoService) List(ctx context.Context) ([]model.Photo, error) {
	return f.photos, nil
}

func (f *fakePhotoService) Refresh(ctx context.Context) ([]model.Photo, error) {
	return f.photos, nil
}

func (f *fakePhotoService) Detail(ctx context.Context, id string) (model.Photo, error) {
	for _, p := range f.photos {
		if fmt.Sprint(p.ID) == id || p.PublicID == id {
			return p, nil
		}
	}
	return model.Photo{}, fmt.Errorf("照片ID %s 不存在: %w", id, constant.ErrNotFound)
}

func (f *fakePhotoService) ClearCache(ctx context.Context) error {
	f.cleared++
	return nil
}

type fakeMetadata struct {
	mu          sync.Mutex
	resolved    []string
	refreshed   []string
	invalidated []string
	cleared     bool
}

func (f *fakeMetadata) Resolve(ctx context.Context, locator string) (model.PhotoMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, locator)
	if locator == "https://cdn.example.com/missing.jpg" {
		return model.PhotoMetadata{}, constant.ErrLocatorUnresolvable
	}
	return model.PhotoMetadata{FileName: photo_info.FileNameOf(locator), IsEstimated: true}, nil
}

func (f *fakeMetadata) Refresh(ctx context.Context, locator string) (model.PhotoMetadata, error) {
	f.mu.Lock()
	f.refreshed = append(f.refreshed, locator)
	f.mu.Unlock()
	return model.PhotoMetadata{FileName: photo_info.FileNameOf(locator)}, nil
}

func (f *fakeMetadata) Invalidate(locator string) {
	f.invalidated = append(f.invalidated, locator)
}

func (f *fakeMetadata) InvalidateAll() {
	f.cleared = true
}

type fakeThumbs struct{}

func (fakeThumbs) Generate(ctx context.Context, locator string, width int) ([]byte, error) {
	return []byte{0xFF, 0xD8, byte(width)}, nil
}

type fakeDispatcher struct{ calls int }

func (d *fakeDispatcher) DispatchRelist() bool {
	d.calls++
	return true
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *fakePhotoService, *fakeMetadata, *fakeDispatcher, *photo_info.Selection) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	photos := &fakePhotoService{photos: []model.Photo{
		{ID: 1, PublicID: "abcd", FileName: "a.jpg", OriginalURL: "https://cdn.example.com/a.jpg"},
		{ID: 2, PublicID: "efgh", FileName: "b.jpg", OriginalURL: "https://cdn.example.com/b.jpg"},
	}}
	meta := &fakeMetadata{}
	dispatcher := &fakeDispatcher{}
	selection := photo_info.NewSelection(meta)
	h := NewHandler(photos, meta, selection, fakeThumbs{}, dispatcher, []string{"cdn.example.com", "Photos.Example.com:8443"})

	r := gin.New()
	api := r.Group("/api")
	api.GET("/photos", h.ListPhotos)
	api.DELETE("/photos/cache", h.ClearListCache)
	api.GET("/photos/:id", h.GetPhoto)
	api.GET("/photos/:id/exif", h.GetPhotoExif)
	api.DELETE("/photos/:id/exif", h.InvalidatePhotoExif)
	api.GET("/photos/:id/thumbnail", h.GetThumbnail)
	api.GET("/exif", h.GetExifByURL)
	api.DELETE("/exif", h.InvalidateExif)
	api.POST("/viewer/select/:id", h.SelectPhoto)
	api.GET("/viewer", h.GetViewer)
	return r, photos, meta, dispatcher, selection
}

func do(r *gin.Engine, method, target string) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandler_Routes(t *testing.T) {
	r, _, _, _, _ := setup(t)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
	}{
		{name: "照片列表", method: http.MethodGet, target: "/api/photos", wantCode: http.StatusOK},
		{name: "数字ID详情", method: http.MethodGet, target: "/api/photos/2", wantCode: http.StatusOK},
		{name: "公共ID详情", method: http.MethodGet, target: "/api/photos/abcd", wantCode: http.StatusOK},
		{name: "不存在的照片", method: http.MethodGet, target: "/api/photos/9", wantCode: http.StatusNotFound},
		{name: "照片元数据", method: http.MethodGet, target: "/api/photos/1/exif", wantCode: http.StatusOK},
		{name: "按地址获取元数据", method: http.MethodGet, target: "/api/exif?url=https://cdn.example.com/x.jpg", wantCode: http.StatusOK},
		{name: "资源不存在", method: http.MethodGet, target: "/api/exif?url=https://cdn.example.com/missing.jpg", wantCode: http.StatusNotFound},
		{name: "非http地址", method: http.MethodGet, target: "/api/exif?url=file:///etc/passwd", wantCode: http.StatusBadRequest},
		{name: "缺少地址", method: http.MethodGet, target: "/api/exif", wantCode: http.StatusBadRequest},
		{name: "无效缩略图宽度", method: http.MethodGet, target: "/api/photos/1/thumbnail?w=abc", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(r, tt.method, tt.target)
			if w.Code != tt.wantCode || env.Code != tt.wantCode {
				t.Errorf("状态码 = %d (响应体 %d), 期望 %d, body=%s", w.Code, env.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestHandler_ExifRejectsForeignHosts(t *testing.T) {
	r, _, meta, _, _ := setup(t)

	tests := []struct {
		name     string
		url      string
		wantCode int
	}{
		{name: "回环地址", url: "http://127.0.0.1/x.jpg", wantCode: http.StatusBadRequest},
		{name: "IPv6回环", url: "http://[::1]/x.jpg", wantCode: http.StatusBadRequest},
		{name: "localhost", url: "http://localhost:8091/x.jpg", wantCode: http.StatusBadRequest},
		{name: "云元数据地址", url: "http://169.254.169.254/latest/meta-data", wantCode: http.StatusBadRequest},
		{name: "内网地址", url: "http://10.0.0.8/x.jpg", wantCode: http.StatusBadRequest},
		{name: "其他域名", url: "https://evil.example.net/x.jpg", wantCode: http.StatusBadRequest},
		{name: "存储域名子域", url: "https://a.cdn.example.com/x.jpg", wantCode: http.StatusBadRequest},
		{name: "域名不区分大小写", url: "https://CDN.example.com/x.jpg", wantCode: http.StatusOK},
		{name: "带端口的配置域名", url: "https://photos.example.com:8443/x.jpg", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(r, http.MethodGet, "/api/exif?url="+url.QueryEscape(tt.url))
			if w.Code != tt.wantCode {
				t.Errorf("状态码 = %d, 期望 %d, body=%s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
	if len(meta.resolved) != 2 {
		t.Errorf("被拒绝的地址不应解析: %v", meta.resolved)
	}

	if w, _ := do(r, http.MethodDelete, "/api/exif?url="+url.QueryEscape("http://127.0.0.1/x.jpg")); w.Code != http.StatusBadRequest {
		t.Errorf("删除缓存时同样应拒绝内部地址, 状态码 = %d", w.Code)
	}
}

func TestHandler_ExifUsesOriginalURL(t *testing.T) {
	r, _, meta, _, _ := setup(t)

	w, env := do(r, http.MethodGet, "/api/photos/efgh/exif")
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}
	if len(meta.resolved) != 1 || meta.resolved[0] != "https://cdn.example.com/b.jpg" {
		t.Errorf("解析的地址 = %v", meta.resolved)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("解析数据失败: %v", err)
	}
	if got["fileName"] != "b.jpg" || got["cameraMake"] != "unknown" || got["isEstimated"] != true {
		t.Errorf("元数据 = %v", got)
	}

	do(r, http.MethodGet, "/api/photos/1/exif?refresh=true")
	if len(meta.refreshed) != 1 || meta.refreshed[0] != "https://cdn.example.com/a.jpg" {
		t.Errorf("刷新的地址 = %v", meta.refreshed)
	}
}

func TestHandler_Invalidate(t *testing.T) {
	r, photos, meta, dispatcher, _ := setup(t)

	if w, _ := do(r, http.MethodDelete, "/api/photos/1/exif"); w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}
	if len(meta.invalidated) != 1 || meta.invalidated[0] != "https://cdn.example.com/a.jpg" {
		t.Errorf("失效的地址 = %v", meta.invalidated)
	}

	do(r, http.MethodDelete, "/api/exif?url=https://cdn.example.com/x.jpg")
	if len(meta.invalidated) != 2 || meta.cleared {
		t.Errorf("带 url 时只应删除单个地址: %v, cleared=%v", meta.invalidated, meta.cleared)
	}
	do(r, http.MethodDelete, "/api/exif")
	if !meta.cleared {
		t.Error("不带 url 时应清空全部")
	}

	if w, _ := do(r, http.MethodDelete, "/api/photos/cache"); w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}
	if photos.cleared != 1 || dispatcher.calls != 1 {
		t.Errorf("cleared=%d, relist=%d", photos.cleared, dispatcher.calls)
	}
}

func TestHandler_Thumbnail(t *testing.T) {
	r, _, _, _, _ := setup(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/photos/1/thumbnail?w=120", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := w.Body.Bytes(); len(body) != 3 || body[2] != 120 {
		t.Errorf("缩略图内容 = %v", body)
	}
}

func TestHandler_Viewer(t *testing.T) {
	r, _, _, _, selection := setup(t)

	w, _ := do(r, http.MethodPost, "/api/viewer/select/2")
	if w.Code != http.StatusAccepted {
		t.Fatalf("状态码 = %d", w.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !selection.Current().Ready && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	_, env := do(r, http.MethodGet, "/api/viewer")
	var snap photo_info.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("解析快照失败: %v", err)
	}
	if snap.Locator != "https://cdn.example.com/b.jpg" || !snap.Ready || snap.Metadata.FileName != "b.jpg" {
		t.Errorf("快照 = %+v", snap)
	}
}
