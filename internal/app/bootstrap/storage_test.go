package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/yzcheng90/Photography-vue/pkg/config"
)

func TestHostOf(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "纯域名", raw: "photos-1256173416.cos.ap-guangzhou.myqcloud.com", want: "photos-1256173416.cos.ap-guangzhou.myqcloud.com"},
		{name: "带协议和路径", raw: "https://s3.example.com/photos", want: "s3.example.com"},
		{name: "域名带路径", raw: "s3.example.com/photos", want: "s3.example.com"},
		{name: "空字符串", raw: " ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hostOf(tt.raw); got != tt.want {
				t.Errorf("hostOf(%q) = %q, 期望 %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDefaultS3Domain(t *testing.T) {
	if got := defaultS3Domain("photos", "", ""); got != "photos.s3.us-east-1.amazonaws.com" {
		t.Errorf("defaultS3Domain() = %q", got)
	}
	if got := defaultS3Domain("photos", "ap-guangzhou", "cos.ap-guangzhou.myqcloud.com"); got != "cos.ap-guangzhou.myqcloud.com/photos" {
		t.Errorf("defaultS3Domain() = %q", got)
	}
}

func writeConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	cfg, err := config.NewConfigFromFile(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	return cfg
}

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantErr    bool
		wantDomain string
		wantHosts  []string
	}{
		{
			name:       "COS 默认域名",
			content:    "[Storage]\nType = cos\nRegion = ap-guangzhou\nBucket = photos-1256173416\nAccessKey = id\nSecretKey = key\n",
			wantDomain: "photos-1256173416.cos.ap-guangzhou.myqcloud.com",
			wantHosts:  []string{"photos-1256173416.cos.ap-guangzhou.myqcloud.com"},
		},
		{
			name:    "COS 缺少密钥",
			content: "[Storage]\nType = cos\nBucket = photos-1256173416\n",
			wantErr: true,
		},
		{
			name:       "HTTP 使用配置的域名",
			content:    "[Storage]\nType = http\nDomain = cdn.example.com\n",
			wantDomain: "cdn.example.com",
			wantHosts:  []string{"cdn.example.com"},
		},
		{
			name:    "HTTP 缺少域名",
			content: "[Storage]\nType = http\n",
			wantErr: true,
		},
		{
			name:    "未知类型",
			content: "[Storage]\nType = ftp\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStorage(context.Background(), writeConfig(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStorage() err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if s.Domain != tt.wantDomain {
				t.Errorf("Domain = %q, 期望 %q", s.Domain, tt.wantDomain)
			}
			if !reflect.DeepEqual(s.Hosts, tt.wantHosts) {
				t.Errorf("Hosts = %v, 期望 %v", s.Hosts, tt.wantHosts)
			}
			if s.Source == nil || s.Provider == nil {
				t.Error("存储组件不完整")
			}
		})
	}
}
