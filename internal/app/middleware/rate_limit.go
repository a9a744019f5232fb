/*
 * @Description: 按客户端IP的频率限制中间件
 * @Author: yzcheng90
 * @Date: 2025-11-18 21:10:00
 * @LastEditTime: 2025-11-22 15:59:28
 * @LastEditors: yzcheng90
 */
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yzcheng90/Photography-vue/pkg/response"
	"github.com/yzcheng90/Photography-vue/pkg/util"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = 10 * time.Minute
)

// ipRateLimiter 为每个IP维护一个令牌桶
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterInfo
	every    time.Duration
	burst    int
	now      func() time.Time
}

type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

func newIPRateLimiter(requestsPerMinute, burst int) *ipRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &ipRateLimiter{
		limiters: make(map[string]*limiterInfo),
		every:    time.Minute / time.Duration(requestsPerMinute),
		burst:    burst,
		now:      time.Now,
	}
}

func (i *ipRateLimiter) allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	info, ok := i.limiters[ip]
	if !ok {
		info = &limiterInfo{limiter: rate.NewLimiter(rate.Every(i.every), i.burst)}
		i.limiters[ip] = info
	}
	info.lastAccessed = i.now()
	return info.limiter.Allow()
}

// sweep 删除长时间未访问的限流器
func (i *ipRateLimiter) sweep() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	removed := 0
	for ip, info := range i.limiters {
		if i.now().Sub(info.lastAccessed) > limiterIdleTTL {
			delete(i.limiters, ip)
			removed++
		}
	}
	return removed
}

func (i *ipRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		i.sweep()
	}
}

// RateLimit 每个IP每分钟最多 requestsPerMinute 次请求，允许 burst 次突发
func RateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	limiter := newIPRateLimiter(requestsPerMinute, burst)
	go limiter.cleanupLoop()
	return rateLimitHandler(limiter)
}

func rateLimitHandler(limiter *ipRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(util.GetRealClientIP(c)) {
			response.Fail(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
