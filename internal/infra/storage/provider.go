/*
 * @Description: 定义了所有存储源需要遵守的接口和公共结构
 * @Author: yzcheng90
 * @Date: 2025-11-16 11:02:18
 * @LastEditTime: 2025-11-22 10:31:54
 * @LastEditors: yzcheng90
 */
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
)

// ObjectInfo 封装了 List 操作返回的单个对象的信息。
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListOptions 列表参数，与 ListObjectsV2 / GetBucket 的参数保持一致
type ListOptions struct {
	Prefix    string
	Delimiter string
	MaxKeys   int
}

// ByteSource 是元数据解码依赖的字节获取协作方。
type ByteSource interface {
	// HeadSize 只请求头部获取内容长度，不下载正文。
	// 资源不存在时返回的错误满足 errors.Is(err, constant.ErrNotFound)。
	HeadSize(ctx context.Context, locator string) (int64, error)
	// FetchBytes 从头开始读取至多 maxBytes 字节，源较慢或中断时可能返回更少的字节。
	FetchBytes(ctx context.Context, locator string, maxBytes int64) ([]byte, error)
}

// IStorageProvider 定义了对象存储提供者必须实现的接口。
type IStorageProvider interface {
	ByteSource
	// List 列出前缀下的直接子对象。
	List(ctx context.Context, opts ListOptions) ([]ObjectInfo, error)
	// Name 用于日志输出
	Name() string
}

// keyFromLocator 将公开访问 URL 转为对象键，去掉开头的斜杠。
func keyFromLocator(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("解析资源地址 '%s' 失败: %w", locator, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("资源地址 '%s' 中没有对象键: %w", locator, constant.ErrBadRequest)
	}
	return key, nil
}

// rangeHeader 返回读取前 maxBytes 字节的 Range 头
func rangeHeader(maxBytes int64) string {
	return fmt.Sprintf("bytes=0-%d", maxBytes-1)
}

// hostRoutedSource 对本存储桶域名下的地址使用存储 SDK，其余地址走普通 HTTP。
type hostRoutedSource struct {
	hosts    map[string]bool
	provider ByteSource
	fallback ByteSource
}

// NewHostRoutedSource 构造按域名分流的字节源。
func NewHostRoutedSource(provider ByteSource, fallback ByteSource, hosts ...string) ByteSource {
	m := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			m[h] = true
		}
	}
	return &hostRoutedSource{hosts: m, provider: provider, fallback: fallback}
}

func (s *hostRoutedSource) pick(locator string) ByteSource {
	u, err := url.Parse(locator)
	if err != nil || s.provider == nil {
		return s.fallback
	}
	if s.hosts[strings.ToLower(u.Host)] {
		return s.provider
	}
	return s.fallback
}

func (s *hostRoutedSource) HeadSize(ctx context.Context, locator string) (int64, error) {
	return s.pick(locator).HeadSize(ctx, locator)
}

func (s *hostRoutedSource) FetchBytes(ctx context.Context, locator string, maxBytes int64) ([]byte, error) {
	return s.pick(locator).FetchBytes(ctx, locator, maxBytes)
}
