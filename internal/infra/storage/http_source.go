/*
 * @Description: 通过普通 HTTP(S) 访问公开图片地址的字节源
 * @Author: yzcheng90
 * @Date: 2025-11-16 11:40:05
 * @LastEditTime: 2025-11-21 18:22:40
 * @LastEditors: yzcheng90
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
)

// HTTPSource 使用 HEAD 与 Range GET 请求读取任意公开地址。
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource 是 HTTPSource 的构造函数，client 为 nil 时使用默认超时的客户端。
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPSource{client: client}
}

func (s *HTTPSource) Name() string { return "http" }

// List 普通 HTTP 无法列举对象
func (s *HTTPSource) List(ctx context.Context, opts ListOptions) ([]ObjectInfo, error) {
	return nil, constant.ErrFeatureNotSupported
}

// HeadSize 通过 HEAD 请求获取 Content-Length
func (s *HTTPSource) HeadSize(ctx context.Context, locator string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, locator, nil)
	if err != nil {
		return 0, fmt.Errorf("创建HEAD请求失败: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD请求失败: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return 0, err
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("服务器未返回Content-Length: %w", constant.ErrProbeFailed)
	}
	return resp.ContentLength, nil
}

// FetchBytes 通过 Range 请求读取前 maxBytes 个字节。
// 服务器忽略 Range 返回 200 时只读取所需长度后关闭连接。
func (s *HTTPSource) FetchBytes(ctx context.Context, locator string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("创建GET请求失败: %w", err)
	}
	req.Header.Set("Range", rangeHeader(maxBytes))
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求图片失败: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		return []byte{}, nil
	}
	if resp.StatusCode == http.StatusOK {
		log.Printf("[HTTP源] 服务器未支持Range请求，截断读取前 %d 字节: %s", maxBytes, locator)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil && len(data) == 0 {
		return nil, fmt.Errorf("读取图片数据失败: %w", err)
	}
	return data, nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("服务器返回 %d: %w", resp.StatusCode, constant.ErrNotFound)
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// 空文件
		return nil
	case resp.StatusCode >= 400:
		return fmt.Errorf("服务器返回错误状态: %d", resp.StatusCode)
	}
	return nil
}
