package photo_info

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
)

// ---- TIFF / JPEG 测试数据构造 ----

const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeSRational = 10
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(b)), data: b}
}

func shortEntry(tag uint16, vals ...uint16) ifdEntry {
	b := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return ifdEntry{tag: tag, typ: typeShort, count: uint32(len(vals)), data: b}
}

func longEntry(tag uint16, vals ...uint32) ifdEntry {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return ifdEntry{tag: tag, typ: typeLong, count: uint32(len(vals)), data: b}
}

func rationalEntry(tag uint16, pairs ...uint32) ifdEntry {
	b := make([]byte, 4*len(pairs))
	for i, v := range pairs {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return ifdEntry{tag: tag, typ: typeRational, count: uint32(len(pairs) / 2), data: b}
}

func sRationalEntry(tag uint16, num, den int32) ifdEntry {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:], uint32(num))
	binary.LittleEndian.PutUint32(b[4:], uint32(den))
	return ifdEntry{tag: tag, typ: typeSRational, count: 1, data: b}
}

// buildTIFF 构造小端 TIFF：IFD0，可选的 Exif 子 IFD 和 GPS 子 IFD
func buildTIFF(ifd0, exifIFD, gpsIFD []ifdEntry) []byte {
	const (
		tagExifPointer = 0x8769
		tagGPSPointer  = 0x8825
	)
	ifdSize := func(n int) int { return 2 + 12*n + 4 }

	root := append([]ifdEntry(nil), ifd0...)
	if len(exifIFD) > 0 {
		root = append(root, longEntry(tagExifPointer, 0))
	}
	if len(gpsIFD) > 0 {
		root = append(root, longEntry(tagGPSPointer, 0))
	}

	rootOff := 8
	exifOff := rootOff + ifdSize(len(root))
	gpsOff := exifOff
	if len(exifIFD) > 0 {
		gpsOff = exifOff + ifdSize(len(exifIFD))
	}
	dataOff := gpsOff
	if len(gpsIFD) > 0 {
		dataOff = gpsOff + ifdSize(len(gpsIFD))
	}

	for i := range root {
		switch root[i].tag {
		case tagExifPointer:
			binary.LittleEndian.PutUint32(root[i].data, uint32(exifOff))
		case tagGPSPointer:
			binary.LittleEndian.PutUint32(root[i].data, uint32(gpsOff))
		}
	}

	out := make([]byte, dataOff)
	copy(out, "II*\x00")
	binary.LittleEndian.PutUint32(out[4:], uint32(rootOff))

	writeIFD := func(at int, entries []ifdEntry) {
		sorted := append([]ifdEntry(nil), entries...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].tag < sorted[j].tag })
		binary.LittleEndian.PutUint16(out[at:], uint16(len(sorted)))
		p := at + 2
		for _, e := range sorted {
			binary.LittleEndian.PutUint16(out[p:], e.tag)
			binary.LittleEndian.PutUint16(out[p+2:], e.typ)
			binary.LittleEndian.PutUint32(out[p+4:], e.count)
			if len(e.data) <= 4 {
				copy(out[p+8:p+12], e.data)
			} else {
				if len(out)%2 == 1 {
					out = append(out, 0)
				}
				binary.LittleEndian.PutUint32(out[p+8:], uint32(len(out)))
				out = append(out, e.data...)
			}
			p += 12
		}
		binary.LittleEndian.PutUint32(out[p:], 0)
	}

	writeIFD(rootOff, root)
	if len(exifIFD) > 0 {
		writeIFD(exifOff, exifIFD)
	}
	if len(gpsIFD) > 0 {
		writeIFD(gpsOff, gpsIFD)
	}
	return out
}

// sampleTIFF 一组完整的相机参数
func sampleTIFF() []byte {
	ifd0 := []ifdEntry{
		asciiEntry(0x010f, "Canon"),
		asciiEntry(0x0110, "Canon EOS R5"),
		asciiEntry(0x0131, "Adobe Lightroom"),
		asciiEntry(0x0132, "2024:05:02 10:00:00"),
	}
	exifIFD := []ifdEntry{
		rationalEntry(0x829a, 1, 100),     // ExposureTime
		rationalEntry(0x829d, 18, 10),     // FNumber
		shortEntry(0x8822, 3),             // ExposureProgram
		shortEntry(0x8827, 400),           // ISOSpeedRatings
		asciiEntry(0x9003, "2024:05:01 08:30:15"),
		sRationalEntry(0x9203, 34, 10),    // BrightnessValue
		shortEntry(0x9207, 5),             // MeteringMode
		shortEntry(0x9209, 0x19),          // Flash
		rationalEntry(0x920a, 24, 1),      // FocalLength
		shortEntry(0xa001, 1),             // ColorSpace
		longEntry(0xa002, 8192),           // PixelXDimension
		longEntry(0xa003, 5464),           // PixelYDimension
		shortEntry(0xa217, 2),             // SensingMethod
		shortEntry(0xa402, 0),             // ExposureMode
		shortEntry(0xa403, 0),             // WhiteBalance
		shortEntry(0xa405, 24),            // FocalLengthIn35mmFilm
		shortEntry(0xa406, 1),             // SceneCaptureType
		asciiEntry(0xa434, "RF24-70mm F2.8 L IS USM"),
	}
	gpsIFD := []ifdEntry{
		asciiEntry(0x0001, "N"),
		rationalEntry(0x0002, 28, 1, 40, 1, 4299, 100),
		asciiEntry(0x0003, "E"),
		rationalEntry(0x0004, 115, 1, 59, 1, 1188, 100),
	}
	return buildTIFF(ifd0, exifIFD, gpsIFD)
}

// encodeJPEG 生成指定尺寸的 JPEG，tiff 非空时插入 APP1 EXIF 段
func encodeJPEG(t testing.TB, w, h int, tiff []byte) []byte {
	t.Helper()
	return encodeJPEGWithPadding(t, w, h, tiff, 0)
}

// encodeJPEGWithPadding 在 APP1 之前插入 pad 字节的 APP2 段，使 EXIF 位于文件较靠后的位置
func encodeJPEGWithPadding(t testing.TB, w, h int, tiff []byte, pad int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("编码JPEG失败: %v", err)
	}
	raw := buf.Bytes()
	out := append([]byte{}, raw[:2]...)
	if pad > 0 {
		app2 := []byte{0xFF, 0xE2, 0, 0}
		binary.BigEndian.PutUint16(app2[2:], uint16(pad+2))
		out = append(out, app2...)
		out = append(out, make([]byte, pad)...)
	}
	if tiff == nil {
		return append(out, raw[2:]...)
	}

	payload := append([]byte("Exif\x00\x00"), tiff...)
	if len(payload)+2 > 0xFFFF {
		t.Fatalf("APP1 过大: %d", len(payload))
	}
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out = append(out, seg...)
	return append(out, raw[2:]...)
}

// ---- 假的字节源 ----

type fakeSource struct {
	mu    sync.Mutex
	files map[string][]byte

	heads   atomic.Int64
	fetches atomic.Int64

	// FetchBytes 请求的字节数大于 slowAbove 时阻塞到 ctx 结束
	slowAbove int64
	delay     time.Duration
}

func newFakeSource() *fakeSource {
	return &fakeSource{files: make(map[string][]byte)}
}

func (s *fakeSource) put(locator string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[locator] = data
}

func (s *fakeSource) get(locator string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[locator]
	return data, ok
}

func (s *fakeSource) HeadSize(ctx context.Context, locator string) (int64, error) {
	s.heads.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	data, ok := s.get(locator)
	if !ok {
		return 0, constant.ErrNotFound
	}
	return int64(len(data)), nil
}

func (s *fakeSource) FetchBytes(ctx context.Context, locator string, maxBytes int64) ([]byte, error) {
	s.fetches.Add(1)
	if s.slowAbove > 0 && maxBytes > s.slowAbove {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	data, ok := s.get(locator)
	if !ok {
		return nil, constant.ErrNotFound
	}
	if int64(len(data)) > maxBytes {
		data = data[:maxBytes]
	}
	return append([]byte(nil), data...), nil
}

func testOptions() Options {
	return Options{
		MaxBufferBytes: 256 << 10,
		DecodeTimeout:  2 * time.Second,
		ProbeTimeout:   2 * time.Second,
		ProbeBytes:     4 << 10,
	}
}
