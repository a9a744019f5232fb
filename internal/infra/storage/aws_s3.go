/*
 * @Description: AWS S3存储提供者实现（使用aws-sdk-go-v2），同样用于 COS 的 S3 兼容接口
 * @Author: yzcheng90
 * @Date: 2025-11-16 12:48:20
 * @LastEditTime: 2025-11-22 10:40:11
 * @LastEditors: yzcheng90
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
)

// S3Options 创建 S3 客户端所需的配置
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // 自定义 endpoint，如 https://cos.ap-guangzhou.myqcloud.com
	AccessKey string
	SecretKey string
}

// AWSS3Provider 实现了 IStorageProvider 接口
type AWSS3Provider struct {
	client *s3.Client
	bucket string
}

// NewAWSS3Provider 创建 S3 客户端
func NewAWSS3Provider(ctx context.Context, opts S3Options) (*AWSS3Provider, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("AWS S3配置缺少存储桶名称")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	var loadOpts []func(*config.LoadOptions) error
	loadOpts = append(loadOpts, config.WithRegion(region))
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Printf("[AWS S3] 创建配置失败: %v", err)
		return nil, fmt.Errorf("创建AWS S3配置失败: %w", err)
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	log.Printf("[AWS S3] 成功创建客户端 - 区域: %s, 存储桶: %s", region, opts.Bucket)
	return &AWSS3Provider{client: client, bucket: opts.Bucket}, nil
}

func (p *AWSS3Provider) Name() string { return "aws_s3" }

// HeadSize 通过 HeadObject 获取对象大小
func (p *AWSS3Provider) HeadSize(ctx context.Context, locator string) (int64, error) {
	key, err := p.objectKey(locator)
	if err != nil {
		return 0, err
	}
	output, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, wrapS3Error("获取对象头信息", err)
	}
	if output.ContentLength == nil {
		return 0, fmt.Errorf("AWS S3未返回Content-Length: %w", constant.ErrProbeFailed)
	}
	return *output.ContentLength, nil
}

// FetchBytes 通过 Range GetObject 读取前 maxBytes 个字节
func (p *AWSS3Provider) FetchBytes(ctx context.Context, locator string, maxBytes int64) ([]byte, error) {
	key, err := p.objectKey(locator)
	if err != nil {
		return nil, err
	}
	output, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Range:  aws.String(rangeHeader(maxBytes)),
	})
	if err != nil {
		return nil, wrapS3Error("从AWS S3获取文件", err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(io.LimitReader(output.Body, maxBytes))
	if err != nil && len(data) == 0 {
		return nil, fmt.Errorf("读取AWS S3对象失败: %w", err)
	}
	return data, nil
}

// List 使用 ListObjectsV2 列出前缀下的直接子对象
func (p *AWSS3Provider) List(ctx context.Context, opts ListOptions) ([]ObjectInfo, error) {
	log.Printf("[AWS S3] List方法调用 - prefix: %q, maxKeys: %d", opts.Prefix, opts.MaxKeys)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(opts.Prefix),
	}
	if opts.Delimiter != "" {
		input.Delimiter = aws.String(opts.Delimiter)
	}
	if opts.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(opts.MaxKeys))
	}

	output, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, wrapS3Error("列出AWS S3对象", err)
	}

	objects := make([]ObjectInfo, 0, len(output.Contents))
	for _, obj := range output.Contents {
		if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
			continue
		}
		info := ObjectInfo{Key: *obj.Key}
		if obj.Size != nil {
			info.Size = *obj.Size
		}
		if obj.LastModified != nil {
			info.LastModified = *obj.LastModified
		}
		objects = append(objects, info)
	}
	return objects, nil
}

// objectKey 路径风格的 endpoint 下 URL 路径可能带有存储桶名，需要去掉
func (p *AWSS3Provider) objectKey(locator string) (string, error) {
	key, err := keyFromLocator(locator)
	if err != nil {
		return "", err
	}
	if u, parseErr := url.Parse(locator); parseErr == nil && !strings.HasPrefix(u.Host, p.bucket+".") {
		key = strings.TrimPrefix(key, p.bucket+"/")
	}
	return key, nil
}

func wrapS3Error(action string, err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%s失败: %w", action, constant.ErrNotFound)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied" {
		return fmt.Errorf("%s失败 (%s): %w", action, apiErr.ErrorCode(), ErrForbidden)
	}
	return fmt.Errorf("%s失败: %w", action, err)
}
