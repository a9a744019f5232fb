/*
 * @Description: 腾讯云COS存储提供者实现
 * @Author: yzcheng90
 * @Date: 2025-11-16 12:10:44
 * @LastEditTime: 2025-11-22 10:35:02
 * @LastEditors: yzcheng90
 *
 * 资源地址（locator）是照片的公开访问 URL，例如
 *   https://photos-1256173416.cos.ap-guangzhou.myqcloud.com/20251115/IMG_1500.jpeg
 * 对象键取 URL 的路径部分并去掉开头的斜杠：20251115/IMG_1500.jpeg
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
)

// COSOptions 创建 COS 客户端所需的配置
type COSOptions struct {
	Bucket    string
	Region    string
	Endpoint  string // 可选，为空时使用 {bucket}.cos.{region}.myqcloud.com
	SecretID  string
	SecretKey string
}

// TencentCOSProvider 实现了 IStorageProvider 接口，用于处理与腾讯云COS的所有交互。
type TencentCOSProvider struct {
	client *cos.Client
	host   string
}

// NewTencentCOSProvider 是 TencentCOSProvider 的构造函数。
func NewTencentCOSProvider(opts COSOptions) (*TencentCOSProvider, error) {
	if opts.Bucket == "" {
		log.Printf("[腾讯云COS] 错误: 存储桶名称为空")
		return nil, fmt.Errorf("腾讯云COS配置缺少存储桶名称")
	}
	if opts.SecretID == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("腾讯云COS配置缺少SecretID或SecretKey")
	}

	server := opts.Endpoint
	if server == "" {
		if opts.Region == "" {
			return nil, fmt.Errorf("腾讯云COS配置缺少区域")
		}
		server = fmt.Sprintf("https://%s.cos.%s.myqcloud.com", opts.Bucket, opts.Region)
	}
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("解析存储桶URL失败: %w", err)
	}

	log.Printf("[腾讯云COS] 创建客户端 - 存储桶: %s, 访问域名: %s", opts.Bucket, u.Host)
	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Timeout: 100 * time.Second,
		Transport: &cos.AuthorizationTransport{
			SecretID:  opts.SecretID,
			SecretKey: opts.SecretKey,
		},
	})
	return &TencentCOSProvider{client: client, host: u.Host}, nil
}

func (p *TencentCOSProvider) Name() string { return "tencent_cos" }

// Host 返回存储桶的访问域名
func (p *TencentCOSProvider) Host() string { return p.host }

// HeadSize 通过 HEAD Object 获取对象大小
func (p *TencentCOSProvider) HeadSize(ctx context.Context, locator string) (int64, error) {
	key, err := keyFromLocator(locator)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Object.Head(ctx, key, nil)
	if err != nil {
		return 0, wrapCOSError("获取对象头信息", err)
	}
	if resp.ContentLength >= 0 {
		return resp.ContentLength, nil
	}
	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("腾讯云COS未返回有效的Content-Length: %w", constant.ErrProbeFailed)
	}
	return size, nil
}

// FetchBytes 通过 Range 读取对象的前 maxBytes 个字节
func (p *TencentCOSProvider) FetchBytes(ctx context.Context, locator string, maxBytes int64) ([]byte, error) {
	key, err := keyFromLocator(locator)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Object.Get(ctx, key, &cos.ObjectGetOptions{Range: rangeHeader(maxBytes)})
	if err != nil {
		return nil, wrapCOSError("从腾讯云COS获取文件", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil && len(data) == 0 {
		return nil, fmt.Errorf("读取腾讯云COS对象失败: %w", err)
	}
	return data, nil
}

// List 列出前缀下的直接子对象
func (p *TencentCOSProvider) List(ctx context.Context, opts ListOptions) ([]ObjectInfo, error) {
	log.Printf("[腾讯云COS] List方法调用 - prefix: %q, delimiter: %q, maxKeys: %d", opts.Prefix, opts.Delimiter, opts.MaxKeys)

	result, _, err := p.client.Bucket.Get(ctx, &cos.BucketGetOptions{
		Prefix:    opts.Prefix,
		Delimiter: opts.Delimiter,
		MaxKeys:   opts.MaxKeys,
	})
	if err != nil {
		return nil, wrapCOSError("列出腾讯云COS对象", err)
	}

	objects := make([]ObjectInfo, 0, len(result.Contents))
	for _, content := range result.Contents {
		var modTime time.Time
		if content.LastModified != "" {
			if t, parseErr := time.Parse("2006-01-02T15:04:05.000Z", content.LastModified); parseErr == nil {
				modTime = t
			}
		}
		objects = append(objects, ObjectInfo{
			Key:          content.Key,
			Size:         int64(content.Size),
			LastModified: modTime,
		})
	}
	log.Printf("[腾讯云COS] List完成 - 对象数量: %d, 公共前缀数量: %d, 是否截断: %v",
		len(result.Contents), len(result.CommonPrefixes), result.IsTruncated)
	return objects, nil
}

// wrapCOSError 将 404 / NoSuchKey / NoSuchBucket 统一为 ErrNotFound，
// 403 / AccessDenied 统一为 ErrForbidden，便于上层判断。
func wrapCOSError(action string, err error) error {
	var cosErr *cos.ErrorResponse
	if errors.As(err, &cosErr) {
		status := 0
		if cosErr.Response != nil {
			status = cosErr.Response.StatusCode
		}
		switch {
		case cosErr.Code == "NoSuchKey" || cosErr.Code == "NoSuchBucket" || status == http.StatusNotFound:
			return fmt.Errorf("%s失败 (%s): %w", action, cosErr.Code, constant.ErrNotFound)
		case cosErr.Code == "AccessDenied" || status == http.StatusForbidden:
			return fmt.Errorf("%s失败 (%s): %w", action, cosErr.Code, ErrForbidden)
		}
	}
	return fmt.Errorf("%s失败: %w", action, err)
}

// ErrForbidden 表示存储桶拒绝访问
var ErrForbidden = errors.New("存储桶拒绝访问")
