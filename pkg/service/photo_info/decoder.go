/*
 * @Description: EXIF/TIFF 标签目录解码，分块读取文件头部，不下载整个文件
 * @Author: yzcheng90
 * @Date: 2025-11-16 17:10:27
 * @LastEditTime: 2025-11-22 15:27:40
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dsoprea/go-exif/v3"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure"
	tiffstructure "github.com/dsoprea/go-tiff-image-structure"
	riimage "github.com/dsoprea/go-utility/image"

	"github.com/yzcheng90/Photography-vue/internal/infra/storage"
	"github.com/yzcheng90/Photography-vue/pkg/constant"
)

type (
	exifParser interface {
		Parse(rs io.ReadSeeker, size int) (ec riimage.MediaContext, err error)
	}
)

func getExifParser(format Format) exifParser {
	switch format {
	case FormatJPEG:
		return jpegstructure.NewJpegMediaParser()
	case FormatTIFF:
		return tiffstructure.NewTiffMediaParser()
	default:
		return nil
	}
}

// 首次读取的块大小，之后每次扩大为 4 倍直到最大缓冲区
const initialChunkBytes = 64 << 10

// TagDecoder 从 JPEG/TIFF 资源中解析出原始标签集合
type TagDecoder struct {
	source         storage.ByteSource
	maxBufferBytes int64
	timeout        time.Duration
}

// NewTagDecoder 是 TagDecoder 的构造函数
func NewTagDecoder(source storage.ByteSource, maxBufferBytes int64, timeout time.Duration) *TagDecoder {
	return &TagDecoder{source: source, maxBufferBytes: maxBufferBytes, timeout: timeout}
}

type decodeResult struct {
	tags RawTagSet
	err  error
}

// Decode 解码资源的标签目录。超时返回 ErrDecodeTimeout，标签目录超过最大缓冲区返回 ErrBufferExceeded。
func (d *TagDecoder) Decode(ctx context.Context, locator string, format Format) (RawTagSet, error) {
	if !format.HasTagDirectory() {
		return nil, constant.ErrFormatUnsupported
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	ch := make(chan decodeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- decodeResult{err: fmt.Errorf("解码标签时发生panic: %v", r)}
			}
		}()
		tags, err := d.decode(ctx, locator, format)
		ch <- decodeResult{tags: tags, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", constant.ErrDecodeTimeout, res.err)
		}
		return res.tags, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, constant.ErrDecodeTimeout
		}
		return nil, ctx.Err()
	}
}

func (d *TagDecoder) decode(ctx context.Context, locator string, format Format) (RawTagSet, error) {
	maxBytes := d.maxBufferBytes
	if maxBytes <= 0 {
		maxBytes = initialChunkBytes
	}
	want := min(int64(initialChunkBytes), maxBytes)

	for {
		buf, err := d.source.FetchBytes(ctx, locator, want)
		if err != nil {
			return nil, fmt.Errorf("读取资源头部失败: %w", err)
		}
		complete := int64(len(buf)) < want // 文件已全部读完

		// 以实际内容为准，扩展名与内容不一致时按内容处理
		actual := SniffFormat(buf)
		if actual == FormatOther {
			actual = format
		}

		exifData, need, err := extractExifBlock(buf, actual, complete)
		switch {
		case err != nil:
			return nil, err
		case need > maxBytes:
			return nil, fmt.Errorf("%w: 需要 %d 字节，最大 %d 字节", constant.ErrBufferExceeded, need, maxBytes)
		case need > 0 && !complete:
			want = min(max(need, want*4), maxBytes)
			continue
		case need > 0:
			return nil, fmt.Errorf("文件在标签目录结束前被截断: %w", constant.ErrNoExif)
		}

		tags, err := parseExifBlock(exifData)
		if err != nil && !complete && want < maxBytes && actual == FormatTIFF {
			// TIFF 的 IFD 可能指向尚未读取的位置
			want = min(want*4, maxBytes)
			continue
		}
		if err != nil && actual == FormatTIFF && !complete {
			return nil, fmt.Errorf("%w: %v", constant.ErrBufferExceeded, err)
		}
		return tags, err
	}
}

// extractExifBlock 从已读取的字节中取出 TIFF 结构的 EXIF 数据。
// need > 0 表示至少需要读取 need 字节才能拿到完整的 EXIF 段。
func extractExifBlock(buf []byte, format Format, complete bool) (exifData []byte, need int64, err error) {
	// 1. 尝试结构化解析
	if parser := getExifParser(format); parser != nil {
		if data := structuredExif(parser, buf); len(data) > 0 {
			return data, 0, nil
		}
	}

	// 2. JPEG 逐段查找 APP1
	if format == FormatJPEG {
		start, end, need, err := locateJPEGExif(buf)
		switch {
		case err != nil:
			return nil, 0, err
		case need > 0:
			return nil, need, nil
		default:
			return buf[start:end], 0, nil
		}
	}

	// 3. 蛮力搜索
	data, err := exif.SearchAndExtractExif(buf)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			if !complete {
				return nil, int64(len(buf)) * 4, nil
			}
			return nil, 0, constant.ErrNoExif
		}
		return nil, 0, fmt.Errorf("搜索EXIF数据失败: %w", err)
	}
	return data, 0, nil
}

func structuredExif(parser exifParser, buf []byte) (data []byte) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
		}
	}()
	res, err := parser.Parse(bytes.NewReader(buf), len(buf))
	if err != nil || res == nil {
		return nil
	}
	_, data, _ = res.Exif()
	return data
}

var exifHeader = []byte("Exif\x00\x00")

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1
	markerTEM  = 0x01
)

// locateJPEGExif 按段遍历 JPEG，返回 APP1 中 TIFF 数据的区间。
// 在扫描数据开始前没有遇到 EXIF 段时返回 ErrNoExif。
func locateJPEGExif(buf []byte) (start, end int, need int64, err error) {
	if len(buf) < 4 {
		return 0, 0, 4, nil
	}
	if buf[0] != 0xFF || buf[1] != markerSOI {
		return 0, 0, 0, fmt.Errorf("不是有效的JPEG文件: %w", constant.ErrNoExif)
	}

	pos := 2
	for {
		// 跳过填充字节
		for pos < len(buf) && buf[pos] == 0xFF && pos+1 < len(buf) && buf[pos+1] == 0xFF {
			pos++
		}
		if pos+4 > len(buf) {
			return 0, 0, int64(pos + 4), nil
		}
		if buf[pos] != 0xFF {
			return 0, 0, 0, fmt.Errorf("偏移 %d 处缺少段标记: %w", pos, constant.ErrNoExif)
		}

		marker := buf[pos+1]
		switch {
		case marker == markerSOS || marker == markerEOI:
			return 0, 0, 0, constant.ErrNoExif
		case marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7):
			pos += 2
			continue
		}

		length := int(binary.BigEndian.Uint16(buf[pos+2 : pos+4]))
		if length < 2 {
			return 0, 0, 0, fmt.Errorf("偏移 %d 处段长度无效: %w", pos, constant.ErrNoExif)
		}
		segEnd := pos + 2 + length

		if marker == markerAPP1 {
			payload := pos + 4
			if payload+len(exifHeader) > len(buf) {
				return 0, 0, int64(payload + len(exifHeader)), nil
			}
			if bytes.Equal(buf[payload:payload+len(exifHeader)], exifHeader) {
				if segEnd > len(buf) {
					return 0, 0, int64(segEnd), nil
				}
				return payload + len(exifHeader), segEnd, 0, nil
			}
		}
		pos = segEnd
	}
}

// parseExifBlock 解析 TIFF 结构的 EXIF 数据，展平为标签集合
func parseExifBlock(exifData []byte) (tags RawTagSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			tags, err = nil, fmt.Errorf("解析EXIF条目时发生panic: %v", r)
		}
	}()

	entries, _, err := exif.GetFlatExifData(exifData, nil)
	if err != nil {
		return nil, fmt.Errorf("解析EXIF条目失败: %w", err)
	}

	tags = make(RawTagSet, len(entries))
	for _, entry := range entries {
		if entry.TagName == "" {
			continue
		}
		if v, ok := rawValueOf(entry); ok {
			tags.Put(entry.TagName, v)
		}
	}
	if len(tags) == 0 {
		return nil, constant.ErrNoExif
	}
	log.Printf("[照片元数据] 解析到 %d 条EXIF标签", len(tags))
	return tags, nil
}
