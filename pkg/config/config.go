/*
 * @Description: 统一配置管理，手动加载 ini 文件并允许环境变量覆盖
 * @Author: yzcheng90
 * @Date: 2025-11-16 09:40:12
 * @LastEditTime: 2025-11-22 18:02:45
 * @LastEditors: yzcheng90
 */
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

// DefaultFilePath 默认配置文件位置
const DefaultFilePath = "data/conf.ini"

// 定义所有已知的配置键
var allKeys = []string{
	KeyServerPort, KeyServerDebug,
	KeyRedisAddr, KeyRedisPassword, KeyRedisDB,
	KeyStorageType, KeyStorageRegion, KeyStorageBucket, KeyStorageDomain, KeyStorageEndpoint,
	KeyStorageAccessKey, KeyStorageSecretKey, KeyStoragePhotoDir, KeyStorageMaxKeys,
	KeyExifMaxBufferBytes, KeyExifDecodeTimeout, KeyExifProbeTimeout, KeyExifProbeBytes, KeyExifDefaultDimensions,
	KeyListingCacheSeconds, KeyThumbnailWidth, KeyThumbnailQuality, KeyCronPrewarm,
	KeyIDGenSeed,
}

const (
	KeyServerPort    = "System.Port"
	KeyServerDebug   = "System.Debug"
	KeyRedisAddr     = "Redis.Addr"
	KeyRedisPassword = "Redis.Password"
	KeyRedisDB       = "Redis.DB"

	KeyStorageType      = "Storage.Type"
	KeyStorageRegion    = "Storage.Region"
	KeyStorageBucket    = "Storage.Bucket"
	KeyStorageDomain    = "Storage.Domain"
	KeyStorageEndpoint  = "Storage.Endpoint"
	KeyStorageAccessKey = "Storage.AccessKey"
	KeyStorageSecretKey = "Storage.SecretKey"
	KeyStoragePhotoDir  = "Storage.PhotoDir"
	KeyStorageMaxKeys   = "Storage.MaxKeys"

	KeyExifMaxBufferBytes    = "Exif.MaxBufferBytes"
	KeyExifDecodeTimeout     = "Exif.DecodeTimeout"
	KeyExifProbeTimeout      = "Exif.ProbeTimeout"
	KeyExifProbeBytes        = "Exif.ProbeBytes"
	KeyExifDefaultDimensions = "Exif.DefaultDimensions"

	KeyListingCacheSeconds = "Listing.CacheSeconds"
	KeyThumbnailWidth      = "Thumbnail.Width"
	KeyThumbnailQuality    = "Thumbnail.Quality"
	KeyCronPrewarm         = "Cron.Prewarm"
	KeyIDGenSeed           = "IDGen.Seed"
)

// EnvPrefix 环境变量前缀，例如 PHOTO_STORAGE_BUCKET
const EnvPrefix = "PHOTO"

var defaults = map[string]interface{}{
	KeyServerPort:            "8091",
	KeyServerDebug:           false,
	KeyRedisDB:               0,
	KeyStorageType:           "cos",
	KeyStorageRegion:         "ap-guangzhou",
	KeyStorageMaxKeys:        1000,
	KeyExifMaxBufferBytes:    256 << 10,
	KeyExifDecodeTimeout:     "3s",
	KeyExifProbeTimeout:      "5s",
	KeyExifProbeBytes:        64 << 10,
	KeyExifDefaultDimensions: true,
	KeyListingCacheSeconds:   300,
	KeyThumbnailWidth:        500,
	KeyThumbnailQuality:      85,
	KeyCronPrewarm:           "0 */10 * * * *",
	KeyIDGenSeed:             "photography",
}

type Config struct {
	vp *viper.Viper
}

// NewConfig 从默认位置加载配置
func NewConfig() (*Config, error) {
	return NewConfigFromFile(DefaultFilePath)
}

// NewConfigFromFile 手动加载配置，文件不存在时创建默认配置文件
func NewConfigFromFile(filePath string) (*Config, error) {
	vp := viper.New()
	for key, value := range defaults {
		vp.SetDefault(key, value)
	}

	// --- 步骤 1: 使用 go-ini 从文件加载配置 ---
	iniCfg, err := ini.Load(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("提示: 未找到 %s，将创建默认配置文件。", filePath)
			if err := createDefaultConfigFile(filePath); err != nil {
				log.Printf("警告: 创建默认配置文件失败: %v，将仅依赖环境变量或内部默认值。", err)
			} else {
				log.Printf("✅ 已创建默认配置文件: %s", filePath)
				iniCfg, err = ini.Load(filePath)
				if err != nil {
					log.Printf("警告: 重新加载配置文件失败: %v", err)
				}
			}
		} else {
			return nil, fmt.Errorf("错误: 解析配置文件 '%s' 失败: %w", filePath, err)
		}
	}

	if iniCfg != nil {
		for _, section := range iniCfg.Sections() {
			for _, key := range section.Keys() {
				viperKey := fmt.Sprintf("%s.%s", section.Name(), key.Name())
				if section.Name() == ini.DefaultSection {
					viperKey = key.Name()
				}
				// 空值不覆盖默认值
				if strings.TrimSpace(key.Value()) == "" {
					continue
				}
				vp.Set(viperKey, key.Value())
			}
		}
		log.Printf("从 %s 文件加载了配置。", filePath)
	}

	// --- 步骤 2: 手动检查并覆盖环境变量 ---
	envReplacer := strings.NewReplacer(".", "_")
	for _, key := range allKeys {
		envVarName := fmt.Sprintf("%s_%s", EnvPrefix, envReplacer.Replace(strings.ToUpper(key)))
		if value, found := os.LookupEnv(envVarName); found {
			vp.Set(key, value)
			log.Printf("发现环境变量: %s, 已覆盖配置 '%s'。", envVarName, key)
		}
	}

	log.Println("✅ 配置加载器初始化完成。")
	return &Config{vp: vp}, nil
}

func (c *Config) GetString(key string) string {
	return c.vp.GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.vp.GetInt(key)
}

func (c *Config) GetInt64(key string) int64 {
	return c.vp.GetInt64(key)
}

func (c *Config) GetBool(key string) bool {
	return c.vp.GetBool(key)
}

// GetDuration 支持 "3s"、"500ms" 形式，纯数字按秒处理
func (c *Config) GetDuration(key string) time.Duration {
	raw := strings.TrimSpace(c.vp.GetString(key))
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return time.Duration(c.vp.GetInt64(key)) * time.Second
}

// createDefaultConfigFile 创建默认的配置文件
func createDefaultConfigFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	defaultConfig := `[System]
Port = 8091
Debug = false

# Redis 配置（可选）
# 如果不配置或留空 Addr，系统将自动使用内存缓存
[Redis]
Addr =
Password =
DB = 0

# 对象存储：cos（腾讯云COS SDK）、s3（S3 兼容接口）或 http（仅按地址读取，不支持列表）
[Storage]
Type = cos
Region = ap-guangzhou
Bucket =
Domain =
Endpoint =
AccessKey =
SecretKey =
PhotoDir =
MaxKeys = 1000

[Exif]
MaxBufferBytes = 262144
DecodeTimeout = 3s
ProbeTimeout = 5s
ProbeBytes = 65536
DefaultDimensions = true

[Listing]
CacheSeconds = 300

[Thumbnail]
Width = 500
Quality = 85

[Cron]
Prewarm = 0 */10 * * * *
`

	if err := os.WriteFile(filePath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
