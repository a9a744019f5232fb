/*
 * @Description: 照片列表服务，列举存储桶中的照片并缓存结果
 * @Author: yzcheng90
 * @Date: 2025-11-17 10:22:48
 * @LastEditTime: 2025-11-22 17:30:16
 * @LastEditors: yzcheng90
 */
package photo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yzcheng90/Photography-vue/internal/infra/storage"
	"github.com/yzcheng90/Photography-vue/internal/pkg/event"
	"github.com/yzcheng90/Photography-vue/pkg/constant"
	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
	"github.com/yzcheng90/Photography-vue/pkg/idgen"
	"github.com/yzcheng90/Photography-vue/pkg/service/utility"
)

const (
	cacheKeyPrefix  = "photo:list:"
	defaultMaxKeys  = 1000
	defaultCacheTTL = 5 * time.Minute
)

var photoExtPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

// Lister 列举对象的存储协作方
type Lister interface {
	List(ctx context.Context, opts storage.ListOptions) ([]storage.ObjectInfo, error)
}

// Publisher 事件发布方
type Publisher interface {
	Publish(topic event.Topic, payload interface{}) bool
}

// Service 定义了照片列表相关的业务逻辑接口。
type Service interface {
	List(ctx context.Context) ([]model.Photo, error)
	// Detail 按数字 ID 或公共 ID 查找照片，返回副本
	Detail(ctx context.Context, id string) (model.Photo, error)
	// Refresh 跳过缓存重新列举
	Refresh(ctx context.Context) ([]model.Photo, error)
	ClearCache(ctx context.Context) error
}

// Options 照片列表配置
type Options struct {
	Domain           string
	PhotoDir         string
	MaxKeys          int
	ThumbnailWidth   int
	ThumbnailQuality int
	CacheTTL         time.Duration
}

type service struct {
	lister    Lister
	cache     utility.CacheService
	encoder   *idgen.Encoder
	publisher Publisher
	opts      Options
	group     singleflight.Group
}

// NewService 是照片列表服务的构造函数，publisher 可以为 nil
func NewService(lister Lister, cache utility.CacheService, encoder *idgen.Encoder, publisher Publisher, opts Options) Service {
	if opts.MaxKeys <= 0 {
		opts.MaxKeys = defaultMaxKeys
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.ThumbnailWidth <= 0 {
		opts.ThumbnailWidth = DefaultThumbnailWidth
	}
	if opts.ThumbnailQuality <= 0 {
		opts.ThumbnailQuality = DefaultThumbnailQuality
	}
	return &service{
		lister:    lister,
		cache:     cache,
		encoder:   encoder,
		publisher: publisher,
		opts:      opts,
	}
}

func (s *service) cacheKey() string {
	return cacheKeyPrefix + strings.Trim(s.opts.PhotoDir, "/")
}

// List 优先返回缓存中的列表，缓存未命中时并发请求共享同一次列举
func (s *service) List(ctx context.Context) ([]model.Photo, error) {
	if photos, ok := s.cached(ctx); ok {
		return photos, nil
	}
	return s.do(ctx, "list", true)
}

func (s *service) Refresh(ctx context.Context) ([]model.Photo, error) {
	return s.do(ctx, "refresh", false)
}

func (s *service) do(ctx context.Context, kind string, useCache bool) ([]model.Photo, error) {
	v, err, _ := s.group.Do(kind+":"+s.cacheKey(), func() (interface{}, error) {
		// 排队期间上一次列举可能已经写入缓存
		if useCache {
			if photos, ok := s.cached(ctx); ok {
				return photos, nil
			}
		}
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return clonePhotos(v.([]model.Photo)), nil
}

func (s *service) cached(ctx context.Context) ([]model.Photo, bool) {
	raw, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		log.Printf("[照片列表] 读取缓存失败: %v", err)
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var photos []model.Photo
	if err := json.Unmarshal([]byte(raw), &photos); err != nil {
		log.Printf("[照片列表] 缓存数据损坏，将重新列举: %v", err)
		return nil, false
	}
	if len(photos) == 0 {
		return nil, false
	}
	return photos, true
}

// fetch 列举配置的目录，目录为空时回退到根目录
func (s *service) fetch(ctx context.Context) ([]model.Photo, error) {
	dir := strings.Trim(strings.TrimSpace(s.opts.PhotoDir), "/")
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	photos, err := s.listPrefix(ctx, prefix)
	if err != nil {
		if isTolerable(err) {
			log.Printf("[照片列表] 获取存储桶内容失败，返回空列表: %v", err)
			return []model.Photo{}, nil
		}
		return nil, fmt.Errorf("获取照片列表失败: %w", err)
	}

	if len(photos) == 0 && prefix != "" {
		log.Printf("[照片列表] 目录 %q 下没有照片，尝试根目录", prefix)
		photos, err = s.listPrefix(ctx, "")
		if err != nil {
			log.Printf("[照片列表] 获取根目录内容失败: %v", err)
			return []model.Photo{}, nil
		}
	}

	if len(photos) > 0 {
		s.store(ctx, photos)
		s.publish(photos)
	}
	log.Printf("[照片列表] 列举完成，共 %d 张照片", len(photos))
	return photos, nil
}

func (s *service) listPrefix(ctx context.Context, prefix string) ([]model.Photo, error) {
	objects, err := s.lister.List(ctx, storage.ListOptions{
		Prefix:    prefix,
		Delimiter: "/",
		MaxKeys:   s.opts.MaxKeys,
	})
	if err != nil {
		return nil, err
	}

	photos := make([]model.Photo, 0, len(objects))
	for _, obj := range objects {
		if !photoExtPattern.MatchString(obj.Key) {
			continue
		}
		photos = append(photos, s.buildPhoto(len(photos)+1, obj))
	}
	return photos, nil
}

func (s *service) buildPhoto(id int, obj storage.ObjectInfo) model.Photo {
	p := model.Photo{
		ID:           id,
		FileName:     path.Base(obj.Key),
		Key:          obj.Key,
		Size:         obj.Size,
		LastModified: obj.LastModified,
		OriginalURL:  PublicURL(s.opts.Domain, obj.Key),
		ThumbnailURL: ThumbnailURL(s.opts.Domain, obj.Key, s.opts.ThumbnailWidth, s.opts.ThumbnailQuality),
	}
	if s.encoder != nil {
		if publicID, err := s.encoder.Encode(uint(id), idgen.EntityTypePhoto); err == nil {
			p.PublicID = publicID
		} else {
			log.Printf("[照片列表] 生成公共ID失败: %v", err)
		}
	}
	return p
}

func (s *service) store(ctx context.Context, photos []model.Photo) {
	data, err := json.Marshal(photos)
	if err != nil {
		log.Printf("[照片列表] 序列化列表失败: %v", err)
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), data, s.opts.CacheTTL); err != nil {
		log.Printf("[照片列表] 写入缓存失败: %v", err)
	}
}

func (s *service) publish(photos []model.Photo) {
	if s.publisher == nil {
		return
	}
	locators := make([]string, len(photos))
	for i, p := range photos {
		locators[i] = p.OriginalURL
	}
	s.publisher.Publish(event.PhotoListed, event.PhotoListedPayload{Locators: locators})
}

func (s *service) Detail(ctx context.Context, id string) (model.Photo, error) {
	numericID, err := s.parseID(id)
	if err != nil {
		return model.Photo{}, err
	}
	photos, err := s.List(ctx)
	if err != nil {
		return model.Photo{}, err
	}
	for _, p := range photos {
		if p.ID == numericID {
			return p, nil
		}
	}
	return model.Photo{}, fmt.Errorf("照片ID %s 不存在: %w", id, constant.ErrNotFound)
}

// parseID 先按数字 ID 解析，失败时按公共 ID 解码
func (s *service) parseID(id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, fmt.Errorf("照片ID为空: %w", constant.ErrBadRequest)
	}
	if n, err := strconv.Atoi(id); err == nil {
		return n, nil
	}
	if s.encoder == nil {
		return 0, fmt.Errorf("无效的照片ID '%s': %w", id, constant.ErrBadRequest)
	}
	n, err := s.encoder.Decode(id, idgen.EntityTypePhoto)
	if err != nil {
		return 0, fmt.Errorf("无效的照片ID '%s': %w", id, constant.ErrNotFound)
	}
	return int(n), nil
}

func (s *service) ClearCache(ctx context.Context) error {
	keys, err := s.cache.Scan(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("查找照片列表缓存失败: %w", err)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("删除照片列表缓存失败: %w", err)
	}
	log.Printf("[照片列表] 已清除 %d 个缓存键", len(keys))
	return nil
}

// isTolerable 存储桶不存在或拒绝访问时按空列表处理
func isTolerable(err error) bool {
	return errors.Is(err, storage.ErrForbidden) || errors.Is(err, constant.ErrNotFound)
}

func clonePhotos(photos []model.Photo) []model.Photo {
	out := make([]model.Photo, len(photos))
	copy(out, photos)
	return out
}
