/*
 * @Description: 单次解码产生的原始标签集合
 * @Author: yzcheng90
 * @Date: 2025-11-16 15:20:45
 * @LastEditTime: 2025-11-21 10:02:18
 * @LastEditors: yzcheng90
 */
package photo_info

import (
	"math"
	"strconv"
	"strings"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// ValueKind 原始值的类型
type ValueKind int

const (
	KindInts ValueKind = iota
	KindRationals
	KindFloats
	KindString
	KindBytes
)

// Rational 有理数，分母为 0 时视为无效
type Rational struct {
	Num int64
	Den int64
}

// RawValue 带类型的原始标签值
type RawValue struct {
	Kind      ValueKind
	Ints      []int64
	Rationals []Rational
	Floats    []float64
	Text      string
	Bytes     []byte
}

// Values 将数值型的原始值展开为浮点数组，字符串尝试按数字解析。
// 分母为 0 的有理数得到 NaN。
func (v RawValue) Values() []float64 {
	switch v.Kind {
	case KindInts:
		out := make([]float64, len(v.Ints))
		for i, n := range v.Ints {
			out[i] = float64(n)
		}
		return out
	case KindRationals:
		out := make([]float64, len(v.Rationals))
		for i, r := range v.Rationals {
			if r.Den == 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = float64(r.Num) / float64(r.Den)
		}
		return out
	case KindFloats:
		return v.Floats
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return nil
		}
		return []float64{f}
	}
	return nil
}

// Float 返回第一个有限数值
func (v RawValue) Float() (float64, bool) {
	vals := v.Values()
	if len(vals) == 0 || math.IsNaN(vals[0]) || math.IsInf(vals[0], 0) {
		return 0, false
	}
	return vals[0], true
}

// Int 返回第一个整数值
func (v RawValue) Int() (int64, bool) {
	if v.Kind == KindInts {
		if len(v.Ints) == 0 {
			return 0, false
		}
		return v.Ints[0], true
	}
	f, ok := v.Float()
	if !ok {
		return 0, false
	}
	return int64(math.Round(f)), true
}

// String 返回去掉空白后的文本值，空串视为不存在
func (v RawValue) String() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	s := strings.TrimSpace(v.Text)
	return s, s != ""
}

// RawTagSet 标签名到原始值的映射
type RawTagSet map[string]RawValue

// aliases 同一标签的常用别名，按候选列表查找时都能命中
var aliases = map[string][]string{
	"DateTime":          {"ModifyDate"},
	"DateTimeDigitized": {"CreateDate"},
	"ISOSpeedRatings":   {"ISO", "PhotographicSensitivity"},
}

// Get 按标签名取值
func (t RawTagSet) Get(name string) (RawValue, bool) {
	v, ok := t[name]
	return v, ok
}

// First 按候选顺序返回第一个存在的标签值
func (t RawTagSet) First(names ...string) (RawValue, bool) {
	for _, name := range names {
		if v, ok := t[name]; ok {
			return v, true
		}
	}
	return RawValue{}, false
}

// Put 写入标签，同名标签保留先出现的（IFD0 优先于缩略图所在的 IFD1）
func (t RawTagSet) Put(name string, v RawValue) {
	if name == "" {
		return
	}
	if _, exists := t[name]; !exists {
		t[name] = v
	}
	for _, alias := range aliases[name] {
		if _, exists := t[alias]; !exists {
			t[alias] = v
		}
	}
}

// rawValueOf 将 go-exif 解析出的值转换为 RawValue
func rawValueOf(tag exif.ExifTag) (RawValue, bool) {
	switch val := tag.Value.(type) {
	case string:
		return RawValue{Kind: KindString, Text: strings.ReplaceAll(val, "\x00", "")}, true
	case []uint8:
		return RawValue{Kind: KindBytes, Bytes: val}, true
	case []uint16:
		ints := make([]int64, len(val))
		for i, n := range val {
			ints[i] = int64(n)
		}
		return RawValue{Kind: KindInts, Ints: ints}, true
	case []uint32:
		ints := make([]int64, len(val))
		for i, n := range val {
			ints[i] = int64(n)
		}
		return RawValue{Kind: KindInts, Ints: ints}, true
	case []int32:
		ints := make([]int64, len(val))
		for i, n := range val {
			ints[i] = int64(n)
		}
		return RawValue{Kind: KindInts, Ints: ints}, true
	case []exifcommon.Rational:
		rs := make([]Rational, len(val))
		for i, r := range val {
			rs[i] = Rational{Num: int64(r.Numerator), Den: int64(r.Denominator)}
		}
		return RawValue{Kind: KindRationals, Rationals: rs}, true
	case []exifcommon.SignedRational:
		rs := make([]Rational, len(val))
		for i, r := range val {
			rs[i] = Rational{Num: int64(r.Numerator), Den: int64(r.Denominator)}
		}
		return RawValue{Kind: KindRationals, Rationals: rs}, true
	case []float32:
		fs := make([]float64, len(val))
		for i, f := range val {
			fs[i] = float64(f)
		}
		return RawValue{Kind: KindFloats, Floats: fs}, true
	case []float64:
		return RawValue{Kind: KindFloats, Floats: val}, true
	}

	// UNDEFINED 类型的标签使用 go-exif 的格式化文本
	text := strings.TrimSpace(strings.ReplaceAll(tag.FormattedFirst, "\x00", ""))
	if text == "" {
		return RawValue{}, false
	}
	return RawValue{Kind: KindString, Text: text}, true
}
