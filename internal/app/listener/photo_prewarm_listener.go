/*
 * @Description: 监听 PhotoListed 事件，在后台预先解析照片元数据，打开详情时直接命中缓存。
 * @Author: yzcheng90
 * @Date: 2025-11-18 17:30:00
 * @LastEditTime: 2025-11-22 14:01:58
 * @LastEditors: yzcheng90
 */
package listener

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yzcheng90/Photography-vue/internal/pkg/event"
	"github.com/yzcheng90/Photography-vue/pkg/service/photo_info"
)

const (
	defaultPrewarmConcurrency = 2
	defaultPrewarmTimeout     = 2 * time.Minute
)

// PhotoPrewarmListener 照片列表刷新后逐个预热元数据缓存
type PhotoPrewarmListener struct {
	resolver    photo_info.Resolver
	baseCtx     context.Context
	concurrency int
	timeout     time.Duration
}

// NewPhotoPrewarmListener 是 PhotoPrewarmListener 的构造函数，并订阅 PhotoListed 事件。
func NewPhotoPrewarmListener(baseCtx context.Context, eventBus *event.EventBus, resolver photo_info.Resolver) *PhotoPrewarmListener {
	l := &PhotoPrewarmListener{
		resolver:    resolver,
		baseCtx:     baseCtx,
		concurrency: defaultPrewarmConcurrency,
		timeout:     defaultPrewarmTimeout,
	}
	eventBus.Subscribe(event.PhotoListed, l.handlePhotoListed)
	return l
}

func (l *PhotoPrewarmListener) handlePhotoListed(payload interface{}) {
	p, ok := payload.(event.PhotoListedPayload)
	if !ok {
		log.Printf("[PhotoPrewarmListener] 错误：收到的PhotoListed事件负载类型不正确: %T", payload)
		return
	}
	log.Printf("[PhotoPrewarmListener] 收到 PhotoListed 事件，共 %d 张照片，开始预热元数据...", len(p.Locators))

	// 不占用事件总线的 worker
	go l.Prewarm(p.Locators)
}

// Prewarm 以有限并发解析所有地址，单个失败不影响其余地址
func (l *PhotoPrewarmListener) Prewarm(locators []string) int {
	ctx, cancel := context.WithTimeout(l.baseCtx, l.timeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	results := make([]bool, len(locators))
	for i, locator := range locators {
		i, locator := i, locator
		g.Go(func() error {
			if _, err := l.resolver.Resolve(ctx, locator); err != nil {
				log.Printf("[PhotoPrewarmListener] 预热 %s 失败: %v", locator, err)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	warmed := 0
	for _, ok := range results {
		if ok {
			warmed++
		}
	}
	log.Printf("[PhotoPrewarmListener] 预热完成: %d/%d", warmed, len(locators))
	return warmed
}
