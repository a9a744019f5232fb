/*
 * @Description: 照片列表、详情与元数据相关的 HTTP 接口
 * @Author: yzcheng90
 * @Date: 2025-11-19 10:05:12
 * @LastEditTime: 2025-11-22 20:14:37
 * @LastEditors: yzcheng90
 */
package photo_handler

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
	"github.com/yzcheng90/Photography-vue/pkg/response"
	"github.com/yzcheng90/Photography-vue/pkg/service/photo"
	"github.com/yzcheng90/Photography-vue/pkg/service/photo_info"
)

// MetadataService 元数据缓存，*photo_info.MetadataCache 实现了该接口
type MetadataService interface {
	Resolve(ctx context.Context, locator string) (model.PhotoMetadata, error)
	Refresh(ctx context.Context, locator string) (model.PhotoMetadata, error)
	Invalidate(locator string)
	InvalidateAll()
}

// ThumbnailService 本地缩略图生成
type ThumbnailService interface {
	Generate(ctx context.Context, locator string, width int) ([]byte, error)
}

// RelistDispatcher 后台刷新照片列表
type RelistDispatcher interface {
	DispatchRelist() bool
}

// Handler 负责处理照片相关的 API 请求。
type Handler struct {
	photoSvc   photo.Service
	metaSvc    MetadataService
	selection  *photo_info.Selection
	thumbSvc   ThumbnailService
	dispatcher RelistDispatcher
	// 按地址查询元数据时允许的主机名
	allowedHosts map[string]struct{}
}

// NewHandler 是 Handler 的构造函数，thumbSvc 和 dispatcher 可以为 nil。
// allowedHosts 为存储桶和公开域名的主机名，/exif?url= 只接受这些主机上的地址。
func NewHandler(photoSvc photo.Service, metaSvc MetadataService, selection *photo_info.Selection, thumbSvc ThumbnailService, dispatcher RelistDispatcher, allowedHosts []string) *Handler {
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, host := range allowedHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			hosts[host] = struct{}{}
		}
	}
	return &Handler{
		photoSvc:     photoSvc,
		metaSvc:      metaSvc,
		selection:    selection,
		thumbSvc:     thumbSvc,
		dispatcher:   dispatcher,
		allowedHosts: hosts,
	}
}

// ListPhotos 获取照片列表
// @Summary      获取照片列表
// @Tags         照片
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Photo}  "获取成功"
// @Failure      500  {object}  response.Response  "获取失败"
// @Router       /photos [get]
func (h *Handler) ListPhotos(c *gin.Context) {
	photos, err := h.photoSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err, "获取照片列表失败")
		return
	}
	response.Success(c, photos, "获取照片列表成功")
}

// GetPhoto 获取照片详情
// @Summary      获取照片详情
// @Tags         照片
// @Produce      json
// @Param        id  path  string  true  "照片ID或公共ID"
// @Success      200  {object}  response.Response{data=model.Photo}  "获取成功"
// @Failure      404  {object}  response.Response  "照片不存在"
// @Router       /photos/{id} [get]
func (h *Handler) GetPhoto(c *gin.Context) {
	p, err := h.photoSvc.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err, "获取照片详情失败")
		return
	}
	response.Success(c, p, "获取照片详情成功")
}

// GetPhotoExif 获取照片元数据，refresh=true 时重新解析
// @Summary      获取照片元数据
// @Tags         照片
// @Produce      json
// @Param        id       path   string  true   "照片ID或公共ID"
// @Param        refresh  query  bool    false  "是否重新解析"
// @Success      200  {object}  response.Response{data=model.PhotoMetadata}  "获取成功"
// @Failure      404  {object}  response.Response  "照片不存在"
// @Router       /photos/{id}/exif [get]
func (h *Handler) GetPhotoExif(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.photoSvc.Detail(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err, "获取照片详情失败")
		return
	}
	h.writeMetadata(c, p.OriginalURL)
}

// GetExifByURL 获取任意图片地址的元数据
// @Summary      按地址获取元数据
// @Tags         照片
// @Produce      json
// @Param        url  query  string  true  "图片的 http(s) 地址"
// @Success      200  {object}  response.Response{data=model.PhotoMetadata}  "获取成功"
// @Failure      400  {object}  response.Response  "地址无效"
// @Router       /exif [get]
func (h *Handler) GetExifByURL(c *gin.Context) {
	locator, err := h.validLocator(c.Query("url"))
	if err != nil {
		response.Error(c, err, "图片地址无效")
		return
	}
	h.writeMetadata(c, locator)
}

func (h *Handler) writeMetadata(c *gin.Context, locator string) {
	ctx := c.Request.Context()
	var (
		meta model.PhotoMetadata
		err  error
	)
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		meta, err = h.metaSvc.Refresh(ctx, locator)
	} else {
		meta, err = h.metaSvc.Resolve(ctx, locator)
	}
	if err != nil {
		response.Error(c, err, "获取照片元数据失败")
		return
	}
	response.Success(c, meta, "获取照片元数据成功")
}

// InvalidatePhotoExif 删除单张照片的元数据缓存
// @Summary      删除照片元数据缓存
// @Tags         照片
// @Param        id  path  string  true  "照片ID或公共ID"
// @Success      200  {object}  response.Response  "删除成功"
// @Router       /photos/{id}/exif [delete]
func (h *Handler) InvalidatePhotoExif(c *gin.Context) {
	p, err := h.photoSvc.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err, "获取照片详情失败")
		return
	}
	h.metaSvc.Invalidate(p.OriginalURL)
	response.Success(c, nil, "已删除照片元数据缓存")
}

// InvalidateExif 删除元数据缓存，带 url 参数时只删除该地址
// @Summary      删除元数据缓存
// @Tags         照片
// @Param        url  query  string  false  "图片地址，为空时清空全部"
// @Success      200  {object}  response.Response  "删除成功"
// @Router       /exif [delete]
func (h *Handler) InvalidateExif(c *gin.Context) {
	if raw := c.Query("url"); raw != "" {
		locator, err := h.validLocator(raw)
		if err != nil {
			response.Error(c, err, "图片地址无效")
			return
		}
		h.metaSvc.Invalidate(locator)
		response.Success(c, nil, "已删除元数据缓存")
		return
	}
	h.metaSvc.InvalidateAll()
	response.Success(c, nil, "已清空全部元数据缓存")
}

// ClearListCache 清除照片列表缓存并在后台重新列举
// @Summary      清除照片列表缓存
// @Tags         照片
// @Success      200  {object}  response.Response  "清除成功"
// @Router       /photos/cache [delete]
func (h *Handler) ClearListCache(c *gin.Context) {
	if err := h.photoSvc.ClearCache(c.Request.Context()); err != nil {
		response.Error(c, err, "清除照片列表缓存失败")
		return
	}
	relisting := h.dispatcher != nil && h.dispatcher.DispatchRelist()
	response.Success(c, gin.H{"relisting": relisting}, "已清除照片列表缓存")
}

// GetThumbnail 返回本地生成的 JPEG 缩略图
// @Summary      获取缩略图
// @Tags         照片
// @Produce      image/jpeg
// @Param        id  path   string  true   "照片ID或公共ID"
// @Param        w   query  int     false  "宽度"
// @Success      200  {file}  binary  "缩略图"
// @Failure      404  {object}  response.Response  "照片不存在"
// @Router       /photos/{id}/thumbnail [get]
func (h *Handler) GetThumbnail(c *gin.Context) {
	if h.thumbSvc == nil {
		response.Error(c, constant.ErrFeatureNotSupported, "缩略图服务未启用")
		return
	}
	width := 0
	if raw := c.Query("w"); raw != "" {
		w, err := strconv.Atoi(raw)
		if err != nil || w < 0 {
			response.Fail(c, http.StatusBadRequest, "无效的缩略图宽度")
			return
		}
		width = w
	}

	ctx := c.Request.Context()
	p, err := h.photoSvc.Detail(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err, "获取照片详情失败")
		return
	}
	data, err := h.thumbSvc.Generate(ctx, p.OriginalURL, width)
	if err != nil {
		response.Error(c, err, "生成缩略图失败")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/jpeg", data)
}

// SelectPhoto 切换当前查看的照片，元数据在后台解析
// @Summary      切换当前照片
// @Tags         查看器
// @Produce      json
// @Param        id  path  string  true  "照片ID或公共ID"
// @Success      202  {object}  response.Response{data=photo_info.Snapshot}  "已切换"
// @Router       /viewer/select/{id} [post]
func (h *Handler) SelectPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.photoSvc.Detail(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err, "获取照片详情失败")
		return
	}
	// 请求结束后解析仍要继续并写入缓存
	h.selection.Show(context.WithoutCancel(ctx), p.OriginalURL, nil)
	response.SuccessWithStatus(c, http.StatusAccepted, h.selection.Current(), "已切换当前照片")
}

// GetViewer 获取当前查看的照片及其元数据
// @Summary      获取当前照片
// @Tags         查看器
// @Produce      json
// @Success      200  {object}  response.Response{data=photo_info.Snapshot}  "获取成功"
// @Router       /viewer [get]
func (h *Handler) GetViewer(c *gin.Context) {
	response.Success(c, h.selection.Current(), "获取当前照片成功")
}

// validLocator 只接受存储桶或公开域名下的 http(s) 地址。
// 回环、内网和链路本地地址除非是配置的域名，否则一律拒绝。
func (h *Handler) validLocator(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", fmt.Errorf("'%s' 不是有效的 http(s) 地址: %w", raw, constant.ErrBadRequest)
	}
	hostname := strings.ToLower(u.Hostname())
	_, hostOK := h.allowedHosts[strings.ToLower(u.Host)]
	_, nameOK := h.allowedHosts[hostname]
	switch {
	case hostOK || nameOK:
		return u.String(), nil
	case isInternalHost(hostname):
		return "", fmt.Errorf("不允许访问内部地址 '%s': %w", hostname, constant.ErrBadRequest)
	default:
		return "", fmt.Errorf("'%s' 不在允许的存储域名内: %w", u.Host, constant.ErrBadRequest)
	}
}

func isInternalHost(hostname string) bool {
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip, err := netip.ParseAddr(hostname)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
