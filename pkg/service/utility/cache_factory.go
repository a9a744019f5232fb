/*
 * @Description: 按 Redis 是否可用选择缓存后端
 * @Author: yzcheng90
 * @Date: 2025-11-16 13:40:00
 * @LastEditTime: 2025-11-24 09:12:30
 * @LastEditors: yzcheng90
 */
package utility

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// CacheKind 缓存后端类型
type CacheKind string

const (
	CacheKindRedis  CacheKind = "redis"
	CacheKindMemory CacheKind = "memory"
)

// NewCacheServiceWithFallback 照片列表和缩略图共用的缓存。
// redisClient 由 database.NewRedisClient 创建，连接失败时为 nil，此时使用内存缓存。
func NewCacheServiceWithFallback(redisClient *redis.Client) CacheService {
	var svc CacheService
	if redisClient == nil {
		svc = NewMemoryCacheService()
	} else {
		svc = NewCacheService(redisClient)
	}
	log.Printf("[缓存] 照片列表与缩略图使用 %s 缓存", KindOf(svc))
	return svc
}

// KindOf 返回缓存服务的后端类型
func KindOf(svc CacheService) CacheKind {
	if _, ok := svc.(*redisCacheService); ok {
		return CacheKindRedis
	}
	return CacheKindMemory
}
