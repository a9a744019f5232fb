/*
 * @Description: 路由注册
 * @Author: yzcheng90
 * @Date: 2025-11-19 11:30:55
 * @LastEditTime: 2025-11-22 18:26:37
 * @LastEditors: yzcheng90
 */
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yzcheng90/Photography-vue/internal/app/middleware"
	photo_handler "github.com/yzcheng90/Photography-vue/pkg/handler/photo"
	version_handler "github.com/yzcheng90/Photography-vue/pkg/handler/version"
)

// 元数据接口会读取远程资源，单独限流
const (
	exifRequestsPerMinute = 120
	exifBurst             = 30
)

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	photoHandler   *photo_handler.Handler
	versionHandler *version_handler.Handler
	exifLimiter    gin.HandlerFunc
}

// NewRouter 是 Router 的构造函数。
func NewRouter(photoHandler *photo_handler.Handler, versionHandler *version_handler.Handler) *Router {
	return &Router{
		photoHandler:   photoHandler,
		versionHandler: versionHandler,
		exifLimiter:    middleware.RateLimit(exifRequestsPerMinute, exifBurst),
	}
}

// Setup 在 engine 上注册 /api 下的所有路由
func (r *Router) Setup(engine *gin.Engine) {
	apiGroup := engine.Group("/api")
	apiGroup.Use(middleware.NoCache())

	r.registerPhotoRoutes(apiGroup)
	r.registerExifRoutes(apiGroup)
	r.registerViewerRoutes(apiGroup)
	r.registerVersionRoutes(apiGroup)
}

func (r *Router) registerPhotoRoutes(api *gin.RouterGroup) {
	photos := api.Group("/photos")
	{
		photos.GET("", r.photoHandler.ListPhotos)
		photos.DELETE("/cache", r.photoHandler.ClearListCache)
		photos.GET("/:id", r.photoHandler.GetPhoto)
		photos.GET("/:id/exif", r.exifLimiter, r.photoHandler.GetPhotoExif)
		photos.DELETE("/:id/exif", r.photoHandler.InvalidatePhotoExif)
		photos.GET("/:id/thumbnail", r.exifLimiter, r.photoHandler.GetThumbnail)
	}
}

func (r *Router) registerExifRoutes(api *gin.RouterGroup) {
	exif := api.Group("/exif")
	{
		exif.GET("", r.exifLimiter, r.photoHandler.GetExifByURL)
		exif.DELETE("", r.photoHandler.InvalidateExif)
	}
}

func (r *Router) registerViewerRoutes(api *gin.RouterGroup) {
	viewer := api.Group("/viewer")
	{
		viewer.GET("", r.photoHandler.GetViewer)
		viewer.POST("/select/:id", r.photoHandler.SelectPhoto)
	}
}

func (r *Router) registerVersionRoutes(api *gin.RouterGroup) {
	api.GET("/version", r.versionHandler.GetVersion)
}
