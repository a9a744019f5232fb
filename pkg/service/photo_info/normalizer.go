/*
 * @Description: 将原始标签归一化为对外的照片元数据记录
 * @Author: yzcheng90
 * @Date: 2025-11-17 09:31:50
 * @LastEditTime: 2025-11-22 16:50:12
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yzcheng90/Photography-vue/internal/pkg/geo"
	"github.com/yzcheng90/Photography-vue/internal/pkg/types"
	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
)

// 拍摄时间的候选标签，按顺序取第一个可解析的
var captureTimeTags = []string{"DateTimeOriginal", "ModifyDate", "CreateDate", "DateTime", "DateCreated"}

var offsetTags = []string{"OffsetTimeOriginal", "OffsetTime", "OffsetTimeDigitized"}

var exifTimeLayouts = []string{
	"2006:01:02 15:04:05",
	"2006:01:02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// NormalizeInput 归一化所需的全部输入，任何一项都可能缺失
type NormalizeInput struct {
	Locator    string
	Tags       RawTagSet
	Dimensions types.Optional[model.Dimensions]
	FileSize   types.Optional[int64]

	// FallbackDimensions 尺寸探测失败时的兜底尺寸，优先级低于标签中的尺寸
	FallbackDimensions types.Optional[model.Dimensions]
}

// Normalize 生成照片元数据，永不失败。
// 标签为空或没有相机厂商/型号时返回只包含探测结果的降级记录。
func Normalize(in NormalizeInput) model.PhotoMetadata {
	meta := model.PhotoMetadata{
		FileName:      FileNameOf(in.Locator),
		FileSizeBytes: in.FileSize,
	}

	if !hasDeviceTag(in.Tags) {
		meta.IsEstimated = true
		dims := in.Dimensions
		if !dims.Known() {
			dims = in.FallbackDimensions
		}
		setDimensions(&meta, dims)
		return meta
	}

	t := in.Tags
	dims := in.Dimensions
	if !dims.Known() {
		dims = dimensionsFromTags(t)
	}
	if !dims.Known() && in.FallbackDimensions.Known() {
		dims = in.FallbackDimensions
		meta.IsEstimated = true
	}
	setDimensions(&meta, dims)

	meta.CaptureTime = captureTime(t)
	meta.Timezone = timezone(t)
	meta.Software = text(t, "Software")
	meta.ColorSpace = label(t, func(n int64) string { return ColorSpace(n).Label() }, "ColorSpace")
	meta.GPS = gps(t)

	meta.FocalLengthMm = focalLength(t)
	meta.ApertureFNumber = aperture(t)
	meta.ShutterSpeed = shutter(t)
	meta.ISO = iso(t)

	meta.CameraMake = text(t, "Make")
	meta.CameraModel = text(t, "Model")
	meta.LensModel = text(t, "LensModel", "Lens")
	meta.LensFocalLengthMm = lensFocalLength(t)
	meta.FocalLength35mmEquivalent = focalLength35mm(t)

	meta.WhiteBalance = label(t, func(n int64) string { return WhiteBalance(n).Label() }, "WhiteBalance")
	meta.ExposureProgram = label(t, func(n int64) string { return ExposureProgram(n).Label() }, "ExposureProgram")
	meta.ExposureMode = label(t, func(n int64) string { return ExposureMode(n).Label() }, "ExposureMode")
	meta.MeteringMode = label(t, func(n int64) string { return MeteringMode(n).Label() }, "MeteringMode")
	meta.FlashState = label(t, func(n int64) string { return Flash(n).Label() }, "Flash")
	meta.SceneCaptureType = label(t, func(n int64) string { return SceneCaptureType(n).Label() }, "SceneCaptureType")
	meta.SensorType = label(t, func(n int64) string { return SensorType(n).Label() }, "SensingMethod")
	meta.BrightnessEV = brightness(t)

	return meta
}

func hasDeviceTag(t RawTagSet) bool {
	if len(t) == 0 {
		return false
	}
	_, hasMake := text(t, "Make").Get()
	_, hasModel := text(t, "Model").Get()
	return hasMake || hasModel
}

// setDimensions 同时设置宽高和由宽高计算的像素数
func setDimensions(meta *model.PhotoMetadata, dims types.Optional[model.Dimensions]) {
	d, ok := dims.Get()
	if !ok || d.Width <= 0 || d.Height <= 0 {
		return
	}
	meta.Width = types.Some(d.Width)
	meta.Height = types.Some(d.Height)
	meta.Megapixels = types.Some(Megapixels(d.Width, d.Height))
}

// Megapixels 返回 width*height/1e6，保留两位小数
func Megapixels(width, height int) float64 {
	return math.Round(float64(width)*float64(height)/1e6*100) / 100
}

func dimensionsFromTags(t RawTagSet) types.Optional[model.Dimensions] {
	w, okW := intTag(t, "PixelXDimension", "ImageWidth")
	h, okH := intTag(t, "PixelYDimension", "ImageLength")
	if !okW || !okH {
		return types.None[model.Dimensions]()
	}
	return types.Some(model.Dimensions{Width: int(w), Height: int(h)})
}

func text(t RawTagSet, names ...string) types.Optional[string] {
	for _, name := range names {
		if v, ok := t[name]; ok {
			if s, ok := v.String(); ok {
				return types.Some(s)
			}
		}
	}
	return types.None[string]()
}

func intTag(t RawTagSet, names ...string) (int64, bool) {
	for _, name := range names {
		if v, ok := t[name]; ok {
			if n, ok := v.Int(); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func floatTag(t RawTagSet, names ...string) (float64, bool) {
	for _, name := range names {
		if v, ok := t[name]; ok {
			if f, ok := v.Float(); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func label(t RawTagSet, lookup func(int64) string, names ...string) types.Optional[string] {
	n, ok := intTag(t, names...)
	if !ok {
		return types.None[string]()
	}
	return types.Some(lookup(n))
}

func captureTime(t RawTagSet) types.Optional[time.Time] {
	loc := time.UTC
	if offset, ok := offsetSeconds(t); ok {
		loc = time.FixedZone("", offset)
	}
	for _, name := range captureTimeTags {
		s, ok := text(t, name).Get()
		if !ok {
			continue
		}
		for _, layout := range exifTimeLayouts {
			if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
				return types.Some(ts)
			}
		}
	}
	return types.None[time.Time]()
}

// offsetSeconds 解析 "+08:00" 形式的时区偏移
func offsetSeconds(t RawTagSet) (int, bool) {
	s, ok := text(t, offsetTags...).Get()
	if !ok || len(s) < 3 {
		return 0, false
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	hh, mm, _ := strings.Cut(s[1:], ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return 0, false
	}
	m := 0
	if mm != "" {
		if m, err = strconv.Atoi(mm); err != nil || m >= 60 {
			return 0, false
		}
	}
	return sign * (h*3600 + m*60), true
}

// timezone 输出 "UTC+8"、"UTC+5:30" 形式
func timezone(t RawTagSet) types.Optional[string] {
	offset, ok := offsetSeconds(t)
	if !ok {
		return types.None[string]()
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h, m := offset/3600, offset%3600/60
	if m == 0 {
		return types.Some(fmt.Sprintf("UTC%s%d", sign, h))
	}
	return types.Some(fmt.Sprintf("UTC%s%d:%02d", sign, h, m))
}

// gps 依次尝试十进制字段、度分秒三元组、"lat,lng" 组合文本
func gps(t RawTagSet) types.Optional[model.GPSCoordinates] {
	if lat, lng, ok := decimalGPS(t); ok {
		return types.Some(coordinates(lat, lng))
	}
	if lat, lng, ok := dmsGPS(t); ok {
		return types.Some(coordinates(lat, lng))
	}
	for _, name := range []string{"GPSCoordinates", "GPSPosition"} {
		if s, ok := text(t, name).Get(); ok {
			if lat, lng, ok := geo.ParsePair(s); ok {
				return types.Some(coordinates(lat, lng))
			}
		}
	}
	return types.None[model.GPSCoordinates]()
}

func coordinates(lat, lng float64) model.GPSCoordinates {
	return model.GPSCoordinates{
		Lat:          lat,
		Lng:          lng,
		FormattedLat: geo.ToFormatted(lat, geo.Latitude),
		FormattedLng: geo.ToFormatted(lng, geo.Longitude),
	}
}

func decimalGPS(t RawTagSet) (float64, float64, bool) {
	if lat, ok := floatTag(t, "latitude", "Latitude"); ok {
		if lng, ok := floatTag(t, "longitude", "Longitude"); ok && geo.Valid(lat, lng) {
			return lat, lng, true
		}
	}
	latV, okLat := t["GPSLatitude"]
	lngV, okLng := t["GPSLongitude"]
	if !okLat || !okLng {
		return 0, 0, false
	}
	lats, lngs := latV.Values(), lngV.Values()
	if len(lats) != 1 || len(lngs) != 1 {
		return 0, 0, false
	}
	lat := applyRef(lats[0], text(t, "GPSLatitudeRef"))
	lng := applyRef(lngs[0], text(t, "GPSLongitudeRef"))
	return lat, lng, geo.Valid(lat, lng)
}

func applyRef(value float64, ref types.Optional[string]) float64 {
	r, ok := ref.Get()
	if !ok || value < 0 {
		return value
	}
	return geo.ToDecimal(value, 0, 0, r)
}

func dmsGPS(t RawTagSet) (float64, float64, bool) {
	lat, ok := dmsAxis(t, "GPSLatitude", "GPSLatitudeRef")
	if !ok {
		return 0, 0, false
	}
	lng, ok := dmsAxis(t, "GPSLongitude", "GPSLongitudeRef")
	if !ok {
		return 0, 0, false
	}
	return lat, lng, geo.Valid(lat, lng)
}

func dmsAxis(t RawTagSet, name, refName string) (float64, bool) {
	v, ok := t[name]
	if !ok {
		return 0, false
	}
	vals := v.Values()
	if len(vals) != 3 {
		return 0, false
	}
	for _, f := range vals {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
	}
	return geo.ToDecimal(vals[0], vals[1], vals[2], text(t, refName).OrElse("")), true
}

// trimFloat 去掉多余的零，最多两位小数，24 -> "24"，4.25 -> "4.25"
func trimFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func focalLength(t RawTagSet) types.Optional[string] {
	f, ok := floatTag(t, "FocalLength")
	if !ok || f <= 0 {
		return types.None[string]()
	}
	return types.Some(FormatFocalLength(f))
}

// FormatFocalLength 输出 "{value} mm"
func FormatFocalLength(f float64) string {
	return trimFloat(f) + " mm"
}

func aperture(t RawTagSet) types.Optional[string] {
	if f, ok := floatTag(t, "FNumber"); ok && f > 0 {
		return types.Some(FormatAperture(f))
	}
	// APEX: N = 2^(Av/2)
	if av, ok := floatTag(t, "ApertureValue"); ok {
		return types.Some(FormatAperture(math.Pow(2, av/2)))
	}
	return types.None[string]()
}

// FormatAperture 输出 "f/{保留一位小数}"
func FormatAperture(f float64) string {
	return fmt.Sprintf("f/%.1f", f)
}

// 曝光时间的合理范围，超出范围的值视为未知
const (
	minExposureSeconds = 1e-6
	maxExposureSeconds = 1e6
)

func shutter(t RawTagSet) types.Optional[string] {
	if v, ok := floatTag(t, "ExposureTime"); ok && validExposure(v) {
		return types.Some(FormatShutter(v))
	}
	// APEX: t = 1 / 2^Tv
	if tv, ok := floatTag(t, "ShutterSpeedValue"); ok {
		if v := 1 / math.Pow(2, tv); validExposure(v) {
			return types.Some(FormatShutter(v))
		}
	}
	return types.None[string]()
}

func validExposure(seconds float64) bool {
	return !math.IsNaN(seconds) && seconds >= minExposureSeconds && seconds <= maxExposureSeconds
}

// FormatShutter 一秒及以上输出 "{保留一位小数} s"，否则输出 "1/{round(1/value)}"。
// 超出合理范围的值返回空字符串。
func FormatShutter(seconds float64) string {
	if !validExposure(seconds) {
		return ""
	}
	if seconds >= 1 {
		return fmt.Sprintf("%.1f s", seconds)
	}
	return fmt.Sprintf("1/%d", int64(math.Round(1/seconds)))
}

// FormatBrightness 输出 "{保留一位小数} EV"
func FormatBrightness(ev float64) string {
	return fmt.Sprintf("%.1f EV", ev)
}

func brightness(t RawTagSet) types.Optional[string] {
	ev, ok := floatTag(t, "BrightnessValue")
	if !ok {
		return types.None[string]()
	}
	return types.Some(FormatBrightness(ev))
}

func iso(t RawTagSet) types.Optional[string] {
	n, ok := intTag(t, "ISOSpeedRatings")
	if !ok || n <= 0 {
		return types.None[string]()
	}
	return types.Some(strconv.FormatInt(n, 10))
}

// lensFocalLength 优先取 LensSpecification 的焦距范围，例如 "24-70 mm"
func lensFocalLength(t RawTagSet) types.Optional[string] {
	if v, ok := t["LensSpecification"]; ok {
		vals := v.Values()
		if len(vals) >= 2 && vals[0] > 0 && !math.IsNaN(vals[0]) {
			lo, hi := vals[0], vals[1]
			if math.IsNaN(hi) || hi <= 0 || hi == lo {
				return types.Some(FormatFocalLength(lo))
			}
			return types.Some(trimFloat(lo) + "-" + FormatFocalLength(hi))
		}
	}
	if f, ok := floatTag(t, "FocalLength"); ok && f > 0 {
		return types.Some(fmt.Sprintf("%.1f mm", f))
	}
	return types.None[string]()
}

func focalLength35mm(t RawTagSet) types.Optional[string] {
	n, ok := intTag(t, "FocalLengthIn35mmFilm")
	if !ok || n <= 0 {
		return types.None[string]()
	}
	return types.Some(fmt.Sprintf("%d mm", n))
}
