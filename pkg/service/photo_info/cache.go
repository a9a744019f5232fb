/*
 * @Description: 元数据缓存：按资源地址单飞去重，结果在进程生命周期内保留
 * @Author: yzcheng90
 * @Date: 2025-11-17 16:40:19
 * @LastEditTime: 2025-11-22 17:31:55
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
)

// Runner 执行一次完整解码，*Pipeline 实现了该接口
type Runner interface {
	Run(ctx context.Context, locator string) (model.PhotoMetadata, error)
}

// Resolver 获取资源地址对应的元数据
type Resolver interface {
	Resolve(ctx context.Context, locator string) (model.PhotoMetadata, error)
}

// EntryState 缓存条目状态
type EntryState int

const (
	StatePending EntryState = iota
	StateReady
	StateFailed
)

func (s EntryState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// entry 在 done 关闭后不再修改，刷新时整体替换
type entry struct {
	locator string
	state   EntryState
	value   model.PhotoMetadata
	err     error
	done    chan struct{}
}

// MetadataCache 元数据缓存服务，进程启动时创建，只能被显式清除。
type MetadataCache struct {
	mu      sync.Mutex
	entries map[string]*entry

	runner  Runner
	baseCtx context.Context
	refresh singleflight.Group
	fanouts atomic.Int64
}

// NewMetadataCache 创建缓存。baseCtx 是后台解码使用的上下文，调用方的 ctx 取消只会停止等待，不会中断解码。
func NewMetadataCache(baseCtx context.Context, runner Runner) *MetadataCache {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &MetadataCache{
		entries: make(map[string]*entry),
		runner:  runner,
		baseCtx: baseCtx,
	}
}

// Resolve 返回资源的元数据。同一地址的并发请求只会触发一次解码，所有等待者拿到相同的值。
// 只有资源不存在时返回错误。
func (c *MetadataCache) Resolve(ctx context.Context, locator string) (model.PhotoMetadata, error) {
	c.mu.Lock()
	e, ok := c.entries[locator]
	if !ok {
		e = &entry{locator: locator, state: StatePending, done: make(chan struct{})}
		c.entries[locator] = e
		c.mu.Unlock()
		go c.fill(e)
	} else {
		c.mu.Unlock()
	}
	return c.wait(ctx, e)
}

func (c *MetadataCache) wait(ctx context.Context, e *entry) (model.PhotoMetadata, error) {
	select {
	case <-e.done:
		return e.value, e.err
	case <-ctx.Done():
		return model.PhotoMetadata{}, ctx.Err()
	}
}

// fill 执行解码并发布结果，每个条目只调用一次
func (c *MetadataCache) fill(e *entry) {
	c.fanouts.Add(1)
	value, err := c.runner.Run(c.baseCtx, e.locator)
	e.value, e.err = value, err
	if err != nil {
		e.state = StateFailed
		log.Printf("[照片元数据] 解析失败 %s: %v", e.locator, err)
	} else {
		e.state = StateReady
	}
	close(e.done)
}

// Invalidate 删除条目，下一次 Resolve 会重新解码。
// 正在解码的条目被删除后，已经在等待的调用方仍会拿到这次的结果。
func (c *MetadataCache) Invalidate(locator string) {
	c.mu.Lock()
	delete(c.entries, locator)
	c.mu.Unlock()
}

// InvalidateAll 清空缓存
func (c *MetadataCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
	log.Printf("[照片元数据] 缓存已清空")
}

// Refresh 重新解码并在完成后替换缓存值，期间旧值仍可被读取。
// 新结果是降级记录而旧值不是时保留旧值，即以最近一次完成的非降级结果为准。
func (c *MetadataCache) Refresh(ctx context.Context, locator string) (model.PhotoMetadata, error) {
	c.mu.Lock()
	old, ok := c.entries[locator]
	c.mu.Unlock()
	if !ok || !isDone(old) {
		return c.Resolve(ctx, locator)
	}

	ch := c.refresh.DoChan(locator, func() (interface{}, error) {
		c.fanouts.Add(1)
		value, err := c.runner.Run(c.baseCtx, locator)
		next := &entry{locator: locator, value: value, err: err, done: make(chan struct{})}
		switch {
		case err != nil:
			next.state = StateFailed
		case value.IsEstimated && old.state == StateReady && !old.value.IsEstimated:
			log.Printf("[照片元数据] 刷新得到降级记录，保留已有结果: %s", locator)
			next.state, next.value = StateReady, old.value
		default:
			next.state = StateReady
		}
		close(next.done)

		c.mu.Lock()
		// 刷新期间条目被删除或替换时不再写回
		if c.entries[locator] == old {
			c.entries[locator] = next
		}
		c.mu.Unlock()
		return next, nil
	})

	select {
	case res := <-ch:
		next := res.Val.(*entry)
		return next.value, next.err
	case <-ctx.Done():
		return model.PhotoMetadata{}, ctx.Err()
	}
}

// State 返回条目当前状态
func (c *MetadataCache) State(locator string) (EntryState, bool) {
	c.mu.Lock()
	e, ok := c.entries[locator]
	c.mu.Unlock()
	if !ok {
		return 0, false
	}
	if !isDone(e) {
		return StatePending, true
	}
	return e.state, true
}

// Len 返回缓存条目数
func (c *MetadataCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fanouts 返回累计触发的解码次数
func (c *MetadataCache) Fanouts() int64 {
	return c.fanouts.Load()
}

func isDone(e *entry) bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}
