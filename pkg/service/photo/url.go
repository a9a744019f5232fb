/*
 * @Description: 照片原图与缩略图访问地址
 * @Author: yzcheng90
 * @Date: 2025-11-17 10:40:21
 * @LastEditTime: 2025-11-20 09:12:03
 * @LastEditors: yzcheng90
 */
package photo

import (
	"fmt"
	"strings"
)

// 缩略图默认参数
const (
	DefaultThumbnailWidth   = 500
	DefaultThumbnailQuality = 85
)

// PublicURL 返回对象的公开访问地址，key 开头的斜杠会被去掉
func PublicURL(domain, key string) string {
	domain = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://"), "/")
	return fmt.Sprintf("https://%s/%s", domain, strings.TrimPrefix(key, "/"))
}

// ThumbnailURL 使用 COS 数据万象 imageMogr2 生成等比缩放的缩略图地址
func ThumbnailURL(domain, key string, width, quality int) string {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultThumbnailQuality
	}
	return fmt.Sprintf("%s?imageMogr2/thumbnail/%dx/rquality/%d", PublicURL(domain, key), width, quality)
}
