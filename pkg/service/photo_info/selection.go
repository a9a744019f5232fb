/*
 * @Description: 当前选中的照片，切换时用代数计数丢弃过期结果
 * @Author: yzcheng90
 * @Date: 2025-11-18 10:12:37
 * @LastEditTime: 2025-11-22 17:40:02
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"context"
	"sync"

	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
)

// Snapshot 选中状态的快照
type Snapshot struct {
	Locator    string              `json:"locator"`
	Generation uint64              `json:"generation"`
	Ready      bool                `json:"ready"`
	Metadata   model.PhotoMetadata `json:"metadata"`
	Error      string              `json:"error,omitempty"`
}

// Selection 保存当前选中的资源。每次切换都会增加代数，
// 后台解析完成时只有代数仍然一致才会写入结果，否则只留在缓存里。
type Selection struct {
	resolver Resolver

	mu         sync.Mutex
	generation uint64
	current    Snapshot
}

func NewSelection(resolver Resolver) *Selection {
	return &Selection{resolver: resolver}
}

// Show 切换到 locator 并在后台解析，返回本次切换的代数和一个在结果处理完后关闭的通道。
// apply 可以为 nil，仅在结果未过期时调用。
func (s *Selection) Show(ctx context.Context, locator string, apply func(model.PhotoMetadata, error)) (uint64, <-chan struct{}) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.current = Snapshot{Locator: locator, Generation: gen}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		meta, err := s.resolver.Resolve(ctx, locator)

		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return
		}
		s.current.Ready = true
		s.current.Metadata = meta
		if err != nil {
			s.current.Error = err.Error()
		}
		s.mu.Unlock()

		if apply != nil {
			apply(meta, err)
		}
	}()
	return gen, done
}

// Current 返回当前选中状态
func (s *Selection) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsCurrent 报告 gen 是否仍是最新的选中代数
func (s *Selection) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}
