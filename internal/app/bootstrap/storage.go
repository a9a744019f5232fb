/*
 * @Description: 根据配置创建对象存储客户端和元数据解码使用的字节源
 * @Author: yzcheng90
 * @Date: 2025-11-19 14:10:31
 * @LastEditTime: 2025-11-22 19:44:08
 * @LastEditors: yzcheng90
 */
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"slices"
	"strings"

	"github.com/yzcheng90/Photography-vue/internal/infra/storage"
	"github.com/yzcheng90/Photography-vue/pkg/config"
)

// 支持的存储类型
const (
	StorageTypeCOS  = "cos"
	StorageTypeS3   = "s3"
	StorageTypeHTTP = "http"
)

// Storage 照片列表与元数据解码共用的存储组件
type Storage struct {
	Provider storage.IStorageProvider
	// Source 本存储桶域名走 SDK，其他地址走普通 HTTP
	Source storage.ByteSource
	// Domain 照片公开访问域名，可以带路径，例如 s3.example.com/photos
	Domain string
	// Hosts 存储桶与公开域名的主机名，按地址查询元数据时只允许这些主机
	Hosts []string
}

// NewStorage 按 Storage.Type 创建存储组件
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	storageType := strings.ToLower(strings.TrimSpace(cfg.GetString(config.KeyStorageType)))
	bucket := cfg.GetString(config.KeyStorageBucket)
	region := cfg.GetString(config.KeyStorageRegion)
	endpoint := cfg.GetString(config.KeyStorageEndpoint)
	domain := strings.TrimSpace(cfg.GetString(config.KeyStorageDomain))
	httpSource := storage.NewHTTPSource(nil)

	var (
		provider storage.IStorageProvider
		hosts    []string
	)
	switch storageType {
	case StorageTypeCOS:
		p, err := storage.NewTencentCOSProvider(storage.COSOptions{
			Bucket:    bucket,
			Region:    region,
			Endpoint:  endpoint,
			SecretID:  cfg.GetString(config.KeyStorageAccessKey),
			SecretKey: cfg.GetString(config.KeyStorageSecretKey),
		})
		if err != nil {
			return nil, err
		}
		provider = p
		hosts = append(hosts, p.Host())
		if domain == "" {
			domain = p.Host()
		}
	case StorageTypeS3:
		p, err := storage.NewAWSS3Provider(ctx, storage.S3Options{
			Bucket:    bucket,
			Region:    region,
			Endpoint:  endpoint,
			AccessKey: cfg.GetString(config.KeyStorageAccessKey),
			SecretKey: cfg.GetString(config.KeyStorageSecretKey),
		})
		if err != nil {
			return nil, err
		}
		provider = p
		if domain == "" {
			domain = defaultS3Domain(bucket, region, endpoint)
		}
	case StorageTypeHTTP:
		provider = httpSource
		if domain == "" {
			return nil, fmt.Errorf("http 存储类型需要配置 %s", config.KeyStorageDomain)
		}
	default:
		return nil, fmt.Errorf("不支持的存储类型: '%s'", storageType)
	}

	if h := hostOf(domain); h != "" && !slices.Contains(hosts, h) {
		hosts = append(hosts, h)
	}
	log.Printf("✅ 存储源: %s, 访问域名: %s", provider.Name(), domain)
	return &Storage{
		Provider: provider,
		Source:   storage.NewHostRoutedSource(provider, httpSource, hosts...),
		Domain:   domain,
		Hosts:    hosts,
	}, nil
}

// defaultS3Domain 自定义 endpoint 使用路径风格，否则使用 AWS 虚拟主机风格
func defaultS3Domain(bucket, region, endpoint string) string {
	if endpoint != "" {
		if h := hostOf(endpoint); h != "" {
			return h + "/" + bucket
		}
	}
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region)
}

// hostOf 从域名或地址中取出主机名
func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
