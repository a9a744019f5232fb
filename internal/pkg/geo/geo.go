/*
 * @Description: GPS 坐标换算：度分秒与十进制度数互转
 * @Author: yzcheng90
 * @Date: 2025-11-16 14:30:02
 * @LastEditTime: 2025-11-21 22:10:37
 * @LastEditors: yzcheng90
 */
package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Axis 坐标轴
type Axis int

const (
	Latitude Axis = iota
	Longitude
)

// ToDecimal 将度分秒换算为十进制度数，南纬和西经取负。
func ToDecimal(degrees, minutes, seconds float64, ref string) float64 {
	value := degrees + minutes/60 + seconds/3600
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		return -value
	}
	return value
}

// ToFormatted 将十进制度数格式化为 D°M'S.SS"H，秒保留两位小数。
func ToFormatted(decimal float64, axis Axis) string {
	hemisphere := hemisphereOf(decimal, axis)
	abs := math.Abs(decimal)

	deg := math.Floor(abs)
	minFloat := (abs - deg) * 60
	min := math.Floor(minFloat)
	sec := math.Round((minFloat-min)*60*100) / 100

	// 秒四舍五入后可能进位到 60
	if sec >= 60 {
		sec -= 60
		min++
	}
	if min >= 60 {
		min -= 60
		deg++
	}
	return fmt.Sprintf("%d°%d'%.2f\"%s", int(deg), int(min), sec, hemisphere)
}

func hemisphereOf(decimal float64, axis Axis) string {
	if axis == Longitude {
		if decimal < 0 {
			return "W"
		}
		return "E"
	}
	if decimal < 0 {
		return "S"
	}
	return "N"
}

var formattedPattern = regexp.MustCompile(`^\s*(\d+)°(\d+)'([\d.]+)"([NSEWnsew])\s*$`)

// ParseFormatted 解析 ToFormatted 的输出，返回十进制度数。
func ParseFormatted(s string) (float64, error) {
	m := formattedPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("无法解析的度分秒坐标: %q", s)
	}
	deg, _ := strconv.ParseFloat(m[1], 64)
	min, _ := strconv.ParseFloat(m[2], 64)
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析秒数 %q: %w", m[3], err)
	}
	return ToDecimal(deg, min, sec, m[4]), nil
}

// ParsePair 解析 "lat,lng" 形式的组合坐标文本。
func ParsePair(s string) (lat, lng float64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, Valid(lat, lng)
}

// Valid 报告经纬度是否都是有限数并处于合法范围内。
func Valid(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return math.Abs(lat) <= 90 && math.Abs(lng) <= 180
}
