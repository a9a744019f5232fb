/*
 * @Description: Redis 客户端，仅用于照片列表缓存
 * @Author: yzcheng90
 * @Date: 2025-11-16 13:10:55
 * @LastEditTime: 2025-11-21 14:22:55
 * @LastEditors: yzcheng90
 */
package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yzcheng90/Photography-vue/pkg/config"
)

// NewRedisClient 根据配置连接 Redis。
// 未配置地址或连接失败时返回 nil，由 utility.NewCacheServiceWithFallback 降级到内存缓存。
func NewRedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	addr := cfg.GetString(config.KeyRedisAddr)
	if addr == "" {
		log.Println("⚠️  Redis 地址未配置，照片列表将使用内存缓存")
		return nil
	}
	db := cfg.GetInt(config.KeyRedisDB)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.GetString(config.KeyRedisPassword),
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("⚠️  连接 Redis (%s, DB %d) 失败: %v，照片列表将使用内存缓存", addr, db, err)
		_ = rdb.Close()
		return nil
	}

	log.Printf("✅ 成功连接到 Redis (%s, DB %d)", addr, db)
	return rdb
}
