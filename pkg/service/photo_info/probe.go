/*
 * @Description: 尺寸探测与大小探测，与标签解码相互独立
 * @Author: yzcheng90
 * @Date: 2025-11-17 11:02:44
 * @LastEditTime: 2025-11-22 11:18:09
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/yzcheng90/Photography-vue/internal/infra/storage"
	"github.com/yzcheng90/Photography-vue/pkg/constant"
	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
)

// DefaultDimensions 无法解码图片时的兜底尺寸
var DefaultDimensions = model.Dimensions{Width: 1200, Height: 800}

// errDefaultDimensions 表示返回的是兜底尺寸而不是实测尺寸
var errDefaultDimensions = fmt.Errorf("使用兜底尺寸: %w", constant.ErrProbeFailed)

// DimensionProbe 只读取足够解析图片头的字节来获取像素尺寸
type DimensionProbe struct {
	source     storage.ByteSource
	probeBytes int64
	maxBytes   int64
	useDefault bool
}

// NewDimensionProbe 是 DimensionProbe 的构造函数。
// useDefault 为 true 时，无法解码的图片返回 DefaultDimensions，错误可用 IsDefaultDimensions 判断。
func NewDimensionProbe(source storage.ByteSource, probeBytes, maxBytes int64, useDefault bool) *DimensionProbe {
	if probeBytes <= 0 {
		probeBytes = 64 << 10
	}
	if maxBytes < probeBytes {
		maxBytes = probeBytes
	}
	return &DimensionProbe{source: source, probeBytes: probeBytes, maxBytes: maxBytes, useDefault: useDefault}
}

// Probe 返回图片的像素尺寸，读取的字节不足时按 4 倍扩大，直到最大值。
// 资源不存在的错误始终原样返回，不会被兜底尺寸掩盖。
func (p *DimensionProbe) Probe(ctx context.Context, locator string) (model.Dimensions, error) {
	want := p.probeBytes
	var lastErr error
	for {
		data, err := p.source.FetchBytes(ctx, locator, want)
		if err != nil {
			return model.Dimensions{}, fmt.Errorf("读取图片头部失败: %w", err)
		}

		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err == nil && cfg.Width > 0 && cfg.Height > 0 {
			return model.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
		}
		lastErr = err

		if int64(len(data)) < want || want >= p.maxBytes {
			break
		}
		want = min(want*4, p.maxBytes)
	}

	if p.useDefault {
		return DefaultDimensions, fmt.Errorf("解析图片尺寸失败: %v: %w", lastErr, errDefaultDimensions)
	}
	return model.Dimensions{}, fmt.Errorf("解析图片尺寸失败: %v: %w", lastErr, constant.ErrProbeFailed)
}

// IsDefaultDimensions 判断 Probe 的错误是否附带了兜底尺寸
func IsDefaultDimensions(err error) bool {
	return errors.Is(err, errDefaultDimensions)
}

// SizeProbe 通过只请求头部的方式获取文件大小
type SizeProbe struct {
	source storage.ByteSource
}

func NewSizeProbe(source storage.ByteSource) *SizeProbe {
	return &SizeProbe{source: source}
}

func (p *SizeProbe) Probe(ctx context.Context, locator string) (int64, error) {
	size, err := p.source.HeadSize(ctx, locator)
	if err != nil {
		return 0, fmt.Errorf("获取文件大小失败: %w", err)
	}
	if size < 0 {
		return 0, constant.ErrProbeFailed
	}
	return size, nil
}
