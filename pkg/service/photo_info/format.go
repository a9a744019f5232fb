/*
 * @Description: 图片格式识别
 * @Author: yzcheng90
 * @Date: 2025-11-16 15:02:11
 * @LastEditTime: 2025-11-20 21:14:36
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"bytes"
	"net/url"
	"path"
	"strings"
)

// Format 图片格式
type Format int

const (
	FormatOther Format = iota
	FormatJPEG
	FormatTIFF
	FormatPNG
	FormatWEBP
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "JPEG"
	case FormatTIFF:
		return "TIFF"
	case FormatPNG:
		return "PNG"
	case FormatWEBP:
		return "WEBP"
	default:
		return "OTHER"
	}
}

// HasTagDirectory 只有 JPEG 和 TIFF 会进入 EXIF 解码
func (f Format) HasTagDirectory() bool {
	return f == FormatJPEG || f == FormatTIFF
}

// DetectFormat 根据资源地址末尾的扩展名判断格式，忽略大小写、查询参数和锚点。
func DetectFormat(locator string) Format {
	p := locator
	if u, err := url.Parse(locator); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg", ".jpe":
		return FormatJPEG
	case ".tif", ".tiff":
		return FormatTIFF
	case ".png":
		return FormatPNG
	case ".webp":
		return FormatWEBP
	default:
		return FormatOther
	}
}

// SniffFormat 通过文件头魔数判断格式
func SniffFormat(head []byte) Format {
	switch {
	case len(head) >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF:
		return FormatJPEG
	case bytes.HasPrefix(head, []byte("II*\x00")), bytes.HasPrefix(head, []byte("MM\x00*")):
		return FormatTIFF
	case bytes.HasPrefix(head, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return FormatWEBP
	default:
		return FormatOther
	}
}

// FileNameOf 返回资源地址路径的最后一段
func FileNameOf(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return locator
	}
	return name
}
