package utility

import (
	"context"
	"sort"
	"testing"
	"time"
)

func TestMemoryCacheService(t *testing.T) {
	svc := NewMemoryCacheService()
	defer svc.(*memoryCacheService).Stop()
	ctx := context.Background()

	if err := svc.Set(ctx, "photo:list:2025", []byte(`[{"id":1}]`), time.Minute); err != nil {
		t.Fatalf("Set() err = %v", err)
	}
	_ = svc.Set(ctx, "photo:list:root", "[]", 0)
	_ = svc.Set(ctx, "other", "x", 0)
	_ = svc.Set(ctx, "photo:list:expired", "x", time.Nanosecond)
	time.Sleep(time.Millisecond)

	if got, _ := svc.Get(ctx, "photo:list:2025"); got != `[{"id":1}]` {
		t.Errorf("Get() = %q", got)
	}
	if got, _ := svc.Get(ctx, "photo:list:expired"); got != "" {
		t.Errorf("过期的键应返回空字符串, 得到 %q", got)
	}
	if got, _ := svc.Get(ctx, "missing"); got != "" {
		t.Errorf("不存在的键应返回空字符串, 得到 %q", got)
	}

	keys, _ := svc.Scan(ctx, "photo:list:*")
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "photo:list:2025" || keys[1] != "photo:list:root" {
		t.Errorf("Scan() = %v", keys)
	}

	_ = svc.Delete(ctx, keys...)
	if got, _ := svc.Get(ctx, "photo:list:root"); got != "" {
		t.Errorf("Delete 后 Get() = %q", got)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		s, pattern string
		expected   bool
	}{
		{"photo:list:a", "photo:list:*", true},
		{"photo:list:a", "photo:*:a", true},
		{"photo:list:a", "photo:*:b", false},
		{"photo:list", "photo:list", true},
		{"ab", "a*b*", true},
		{"aba", "*ba", true},
		{"a", "a*a", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.s, tt.pattern); got != tt.expected {
			t.Errorf("matchPattern(%q, %q) = %v, 期望 %v", tt.s, tt.pattern, got, tt.expected)
		}
	}
}
