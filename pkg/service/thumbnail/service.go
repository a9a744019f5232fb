/*
 * @Description: 使用 imaging 在本地生成 JPEG 缩略图，用于不支持数据万象的存储源
 * @Author: yzcheng90
 * @Date: 2025-11-18 16:09:46
 * @LastEditTime: 2025-11-22 09:51:42
 * @LastEditors: yzcheng90
 */
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/yzcheng90/Photography-vue/internal/infra/storage"
	"github.com/yzcheng90/Photography-vue/pkg/constant"
	"github.com/yzcheng90/Photography-vue/pkg/service/utility"
)

const (
	defaultMaxSourceBytes = 32 << 20
	defaultCacheTTL       = time.Hour
	defaultRenderTimeout  = time.Minute
	maxWidth              = 2000
	cacheKeyPrefix        = "photo:thumb:"
)

// Options 缩略图配置
type Options struct {
	Width          int
	Quality        int
	MaxSourceBytes int64
	CacheTTL       time.Duration
	RenderTimeout  time.Duration
}

// Service 按资源地址生成缩略图，结果缓存在 CacheService 中
type Service struct {
	source storage.ByteSource
	cache  utility.CacheService
	opts   Options
	group  singleflight.Group
}

// NewService 是缩略图服务的构造函数，cache 可以为 nil
func NewService(source storage.ByteSource, cache utility.CacheService, opts Options) *Service {
	if opts.Width <= 0 {
		opts.Width = 500
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}
	if opts.MaxSourceBytes <= 0 {
		opts.MaxSourceBytes = defaultMaxSourceBytes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = defaultRenderTimeout
	}
	return &Service{source: source, cache: cache, opts: opts}
}

// Generate 返回指定宽度的 JPEG 缩略图，width 为 0 时使用默认宽度
func (s *Service) Generate(ctx context.Context, locator string, width int) ([]byte, error) {
	if width <= 0 {
		width = s.opts.Width
	}
	if width > maxWidth {
		return nil, fmt.Errorf("缩略图宽度 %d 超过上限 %d: %w", width, maxWidth, constant.ErrBadRequest)
	}
	key := fmt.Sprintf("%s%d:%d:%s", cacheKeyPrefix, width, s.opts.Quality, locator)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			return []byte(cached), nil
		}
	}

	// 多个请求共用一次生成，不随第一个请求断开而取消
	ch := s.group.DoChan(key, func() (interface{}, error) {
		renderCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RenderTimeout)
		defer cancel()

		data, err := s.render(renderCtx, locator, width)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(renderCtx, key, data, s.opts.CacheTTL); err != nil {
				log.Printf("[缩略图] 写入缓存失败: %v", err)
			}
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) render(ctx context.Context, locator string, width int) ([]byte, error) {
	raw, err := s.source.FetchBytes(ctx, locator, s.opts.MaxSourceBytes)
	if err != nil {
		return nil, fmt.Errorf("获取原图失败: %w", err)
	}
	if int64(len(raw)) >= s.opts.MaxSourceBytes {
		return nil, fmt.Errorf("原图超过 %d 字节，无法生成缩略图: %w", s.opts.MaxSourceBytes, constant.ErrBufferExceeded)
	}

	// 自动处理方向（例如手机拍摄的照片）
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("解码图片 '%s' 失败: %w", locator, err)
	}
	if src.Bounds().Dx() < width {
		width = src.Bounds().Dx()
	}
	thumb := imaging.Resize(src, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(s.opts.Quality)); err != nil {
		return nil, fmt.Errorf("编码JPEG缩略图失败: %w", err)
	}
	log.Printf("[缩略图] 已生成 %s (宽 %d, %d 字节)", locator, width, buf.Len())
	return buf.Bytes(), nil
}
