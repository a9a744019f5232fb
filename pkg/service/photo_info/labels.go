/*
 * @Description: EXIF 枚举值对应的文字标签
 * @Author: yzcheng90
 * @Date: 2025-11-16 16:05:32
 * @LastEditTime: 2025-11-21 11:46:03
 * @LastEditors: yzcheng90
 *
 * 每个枚举都只有一个 default 分支。标签存在但取值不在表中时返回 LabelOther，
 * 与标签缺失时的 "unknown" 区分开。
 */
package photo_info

import "strings"

// LabelOther 标签存在但取值无法识别
const LabelOther = "Other"

type WhiteBalance int64

func (v WhiteBalance) Label() string {
	switch v {
	case 0:
		return "Auto"
	case 1:
		return "Manual"
	default:
		return LabelOther
	}
}

type ExposureProgram int64

func (v ExposureProgram) Label() string {
	switch v {
	case 0:
		return "Not defined"
	case 1:
		return "Manual"
	case 2:
		return "Program AE"
	case 3:
		return "Aperture priority"
	case 4:
		return "Shutter priority"
	case 5:
		return "Creative"
	case 6:
		return "Action"
	case 7:
		return "Portrait"
	case 8:
		return "Landscape"
	default:
		return LabelOther
	}
}

type ExposureMode int64

func (v ExposureMode) Label() string {
	switch v {
	case 0:
		return "Auto"
	case 1:
		return "Manual"
	case 2:
		return "Auto bracket"
	default:
		return LabelOther
	}
}

type MeteringMode int64

func (v MeteringMode) Label() string {
	switch v {
	case 0:
		return "Not defined"
	case 1:
		return "Average"
	case 2:
		return "Center-weighted average"
	case 3:
		return "Spot"
	case 4:
		return "Multi-spot"
	case 5:
		return "Multi-segment"
	case 6:
		return "Partial"
	default:
		// 255 在标准中本身就是 "Other"
		return LabelOther
	}
}

type SceneCaptureType int64

func (v SceneCaptureType) Label() string {
	switch v {
	case 0:
		return "Standard"
	case 1:
		return "Landscape"
	case 2:
		return "Portrait"
	case 3:
		return "Night scene"
	default:
		return LabelOther
	}
}

type ColorSpace int64

func (v ColorSpace) Label() string {
	switch v {
	case 1:
		return "sRGB"
	case 2:
		return "Adobe RGB"
	case 0xFFFF:
		return "Uncalibrated"
	default:
		return LabelOther
	}
}

// SensorType 对应 SensingMethod 标签
type SensorType int64

func (v SensorType) Label() string {
	switch v {
	case 1:
		return "Not defined"
	case 2:
		return "One-chip color area"
	case 3:
		return "Two-chip color area"
	case 4:
		return "Three-chip color area"
	case 5:
		return "Color sequential area"
	case 7:
		return "Trilinear"
	case 8:
		return "Color sequential linear"
	default:
		return LabelOther
	}
}

// FlashMode 闪光灯模式，取 Flash 值的第 2-3 位
type FlashMode int64

func (v FlashMode) Label() string {
	switch v {
	case 1:
		return "auto"
	case 2:
		return "forced"
	case 3:
		return "suppressed"
	default:
		return "undetermined"
	}
}

// Flash 闪光灯状态位域：第 0 位是否闪光，第 2-3 位模式，第 5 位检测到回闪。
type Flash int64

func (v Flash) Fired() bool          { return v&0x01 != 0 }
func (v Flash) Mode() FlashMode      { return FlashMode((v >> 2) & 0x03) }
func (v Flash) ReturnDetected() bool { return v&0x20 != 0 }

// Label 依次拼接模式、是否闪光、回闪检测，例如 "forced, fired"
func (v Flash) Label() string {
	parts := []string{v.Mode().Label()}
	if v.Fired() {
		parts = append(parts, "fired")
	} else {
		parts = append(parts, "not fired")
	}
	if v.ReturnDetected() {
		parts = append(parts, "return detected")
	}
	return strings.Join(parts, ", ")
}
