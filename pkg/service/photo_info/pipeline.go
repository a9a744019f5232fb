/*
 * @Description: 解码流水线：尺寸探测、大小探测、标签解码并发执行，汇合后归一化
 * @Author: yzcheng90
 * @Date: 2025-11-17 14:26:03
 * @LastEditTime: 2025-11-22 17:05:41
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yzcheng90/Photography-vue/internal/infra/storage"
	"github.com/yzcheng90/Photography-vue/internal/pkg/types"
	"github.com/yzcheng90/Photography-vue/pkg/constant"
	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
)

// Options 解码相关配置
type Options struct {
	MaxBufferBytes    int64
	DecodeTimeout     time.Duration
	ProbeTimeout      time.Duration
	ProbeBytes        int64
	DefaultDimensions bool
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		MaxBufferBytes: 256 << 10,
		DecodeTimeout:  3 * time.Second,
		ProbeTimeout:   5 * time.Second,
		ProbeBytes:     64 << 10,

		DefaultDimensions: true,
	}
}

// outcome 单个子任务的结果，失败也作为结果记录下来，不中断汇合
type outcome[T any] struct {
	value T
	err   error
	ran   bool
}

func (o outcome[T]) ok() bool { return o.ran && o.err == nil }

func (o outcome[T]) notFound() bool { return o.ran && errors.Is(o.err, constant.ErrNotFound) }

// Pipeline 对一个资源地址执行完整的解码
type Pipeline struct {
	decoder      *TagDecoder
	dimensions   *DimensionProbe
	size         *SizeProbe
	probeTimeout time.Duration
}

// NewPipeline 是 Pipeline 的构造函数
func NewPipeline(source storage.ByteSource, opts Options) *Pipeline {
	return &Pipeline{
		decoder:      NewTagDecoder(source, opts.MaxBufferBytes, opts.DecodeTimeout),
		dimensions:   NewDimensionProbe(source, opts.ProbeBytes, opts.MaxBufferBytes, opts.DefaultDimensions),
		size:         NewSizeProbe(source),
		probeTimeout: opts.ProbeTimeout,
	}
}

// Run 并发执行三个子任务，任一失败都不会取消其他任务。
// 只有当有探测报告资源不存在且没有任何子任务拿到数据时返回 ErrLocatorUnresolvable。
func (p *Pipeline) Run(ctx context.Context, locator string) (model.PhotoMetadata, error) {
	format := DetectFormat(locator)

	var (
		dims outcome[model.Dimensions]
		size outcome[int64]
		tags outcome[RawTagSet]
	)

	// 每个任务自己记录结果并返回 nil，组内不会因为某个失败而取消
	var g errgroup.Group
	g.Go(func() error {
		probeCtx, cancel := p.withProbeTimeout(ctx)
		defer cancel()
		dims.value, dims.err = p.dimensions.Probe(probeCtx, locator)
		dims.ran = true
		return nil
	})
	g.Go(func() error {
		probeCtx, cancel := p.withProbeTimeout(ctx)
		defer cancel()
		size.value, size.err = p.size.Probe(probeCtx, locator)
		size.ran = true
		return nil
	})
	if format.HasTagDirectory() {
		g.Go(func() error {
			tags.value, tags.err = p.decoder.Decode(ctx, locator, format)
			tags.ran = true
			return nil
		})
	}
	_ = g.Wait()

	if (dims.notFound() || size.notFound() || tags.notFound()) && !dims.ok() && !size.ok() && !tags.ok() {
		log.Printf("[照片元数据] 资源不存在: %s", locator)
		return model.PhotoMetadata{FileName: FileNameOf(locator)}, constant.ErrLocatorUnresolvable
	}

	in := NormalizeInput{Locator: locator}
	switch {
	case dims.ok():
		in.Dimensions = types.Some(dims.value)
	case IsDefaultDimensions(dims.err):
		log.Printf("[照片元数据] 无法解析图片尺寸，使用兜底尺寸 %s: %v", locator, dims.err)
		in.FallbackDimensions = types.Some(dims.value)
	default:
		log.Printf("[照片元数据] 尺寸探测失败 %s: %v", locator, dims.err)
	}
	if size.ok() {
		in.FileSize = types.Some(size.value)
	} else {
		log.Printf("[照片元数据] 大小探测失败 %s: %v", locator, size.err)
	}
	if tags.ok() {
		in.Tags = tags.value
	} else if tags.ran {
		log.Printf("[照片元数据] 标签解码失败，使用降级记录 %s: %v", locator, tags.err)
	}
	return Normalize(in), nil
}

func (p *Pipeline) withProbeTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.probeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.probeTimeout)
}
