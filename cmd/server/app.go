/*
 * @Description: 应用的组装与生命周期管理
 * @Author: yzcheng90
 * @Date: 2025-11-19 10:35:28
 * @LastEditTime: 2025-11-23 10:15:28
 * @LastEditors: yzcheng90
 */
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yzcheng90/Photography-vue/internal/app/bootstrap"
	"github.com/yzcheng90/Photography-vue/internal/app/listener"
	"github.com/yzcheng90/Photography-vue/internal/app/middleware"
	"github.com/yzcheng90/Photography-vue/internal/app/task"
	"github.com/yzcheng90/Photography-vue/internal/infra/persistence/database"
	"github.com/yzcheng90/Photography-vue/internal/infra/router"
	"github.com/yzcheng90/Photography-vue/internal/pkg/event"
	"github.com/yzcheng90/Photography-vue/internal/pkg/version"
	"github.com/yzcheng90/Photography-vue/pkg/config"
	photo_handler "github.com/yzcheng90/Photography-vue/pkg/handler/photo"
	version_handler "github.com/yzcheng90/Photography-vue/pkg/handler/version"
	"github.com/yzcheng90/Photography-vue/pkg/idgen"
	"github.com/yzcheng90/Photography-vue/pkg/service/photo"
	"github.com/yzcheng90/Photography-vue/pkg/service/photo_info"
	"github.com/yzcheng90/Photography-vue/pkg/service/thumbnail"
	"github.com/yzcheng90/Photography-vue/pkg/service/utility"
)

const shutdownTimeout = 10 * time.Second

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg        *config.Config
	engine     *gin.Engine
	server     *http.Server
	scheduler  *task.Scheduler
	eventBus   *event.EventBus
	metaCache  *photo_info.MetadataCache
	cacheSvc   utility.CacheService
	photoSvc   photo.Service
	redis      *redis.Client
	cancelBase context.CancelFunc
}

func (a *App) PrintBanner() {
	log.Println("--------------------------------------------------------")
	log.Printf(" Photography - %s", version.GetBuildInfo().String())
	log.Printf(" 缓存: %s", utility.KindOf(a.cacheSvc))
	log.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp(configPath string) (*App, func(), error) {
	cfg, err := config.NewConfigFromFile(configPath)
	if err != nil {
		return nil, nil, err
	}

	// 后台解码与预热使用的上下文，应用关闭时取消
	baseCtx, cancelBase := context.WithCancel(context.Background())

	// --- 存储 ---
	store, err := bootstrap.NewStorage(baseCtx, cfg)
	if err != nil {
		cancelBase()
		return nil, nil, fmt.Errorf("初始化存储失败: %w", err)
	}

	// --- 缓存 ---
	redisClient := database.NewRedisClient(baseCtx, cfg)
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient)

	// --- 元数据解码 ---
	opts := photo_info.DefaultOptions()
	if v := cfg.GetInt64(config.KeyExifMaxBufferBytes); v > 0 {
		opts.MaxBufferBytes = v
	}
	if v := cfg.GetDuration(config.KeyExifDecodeTimeout); v > 0 {
		opts.DecodeTimeout = v
	}
	if v := cfg.GetDuration(config.KeyExifProbeTimeout); v > 0 {
		opts.ProbeTimeout = v
	}
	if v := cfg.GetInt64(config.KeyExifProbeBytes); v > 0 {
		opts.ProbeBytes = v
	}
	opts.DefaultDimensions = cfg.GetBool(config.KeyExifDefaultDimensions)

	pipeline := photo_info.NewPipeline(store.Source, opts)
	metaCache := photo_info.NewMetadataCache(baseCtx, pipeline)
	selection := photo_info.NewSelection(metaCache)

	// --- 事件与照片列表 ---
	eventBus := event.NewEventBus()
	listener.NewPhotoPrewarmListener(baseCtx, eventBus, metaCache)

	encoder, err := idgen.NewEncoder(cfg.GetString(config.KeyIDGenSeed))
	if err != nil {
		cancelBase()
		eventBus.Shutdown()
		return nil, nil, err
	}
	photoSvc := photo.NewService(store.Provider, cacheSvc, encoder, eventBus, photo.Options{
		Domain:           store.Domain,
		PhotoDir:         cfg.GetString(config.KeyStoragePhotoDir),
		MaxKeys:          cfg.GetInt(config.KeyStorageMaxKeys),
		ThumbnailWidth:   cfg.GetInt(config.KeyThumbnailWidth),
		ThumbnailQuality: cfg.GetInt(config.KeyThumbnailQuality),
		CacheTTL:         time.Duration(cfg.GetInt(config.KeyListingCacheSeconds)) * time.Second,
	})
	thumbSvc := thumbnail.NewService(store.Source, cacheSvc, thumbnail.Options{
		Width:   cfg.GetInt(config.KeyThumbnailWidth),
		Quality: cfg.GetInt(config.KeyThumbnailQuality),
	})

	// --- 定时任务 ---
	scheduler := task.NewScheduler(photoSvc)
	if err := scheduler.RegisterJobs(cfg.GetString(config.KeyCronPrewarm)); err != nil {
		cancelBase()
		eventBus.Shutdown()
		scheduler.Stop()
		return nil, nil, err
	}

	// --- HTTP ---
	if !cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.Cors())

	photoHandler := photo_handler.NewHandler(photoSvc, metaCache, selection, thumbSvc, scheduler, store.Hosts)
	router.NewRouter(photoHandler, version_handler.NewHandler()).Setup(engine)

	app := &App{
		cfg:        cfg,
		engine:     engine,
		scheduler:  scheduler,
		eventBus:   eventBus,
		metaCache:  metaCache,
		cacheSvc:   cacheSvc,
		photoSvc:   photoSvc,
		redis:      redisClient,
		cancelBase: cancelBase,
	}

	cleanup := func() {
		log.Println("执行清理操作：关闭后台任务与连接...")
		cancelBase()
		eventBus.Shutdown()
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}
	return app, cleanup, nil
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) MetadataCache() *photo_info.MetadataCache {
	return a.metaCache
}

// Run 启动调度器并监听端口，ctx 取消时优雅关闭 HTTP 服务
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start()
	// 启动时列举一次，顺带触发元数据预热
	a.scheduler.DispatchRelist()

	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	a.server = &http.Server{
		Addr:              ":" + port,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("应用程序启动成功，正在监听端口: %s", port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("收到退出信号，正在关闭 HTTP 服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	return nil
}

func (a *App) Stop() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		log.Println("任务调度器已停止。")
	}
}
