package utility

import (
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestNewCacheServiceWithFallback(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	tests := []struct {
		name     string
		client   *redis.Client
		expected CacheKind
	}{
		{name: "未连接Redis使用内存缓存", client: nil, expected: CacheKindMemory},
		{name: "已连接Redis使用Redis缓存", client: client, expected: CacheKindRedis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCacheServiceWithFallback(tt.client)
			if got := KindOf(svc); got != tt.expected {
				t.Errorf("KindOf() = %v, 期望 %v", got, tt.expected)
			}
		})
	}
}
