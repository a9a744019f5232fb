/*
 * @Description: 照片与照片元数据的领域模型
 * @Author: yzcheng90
 * @Date: 2025-11-16 10:20:11
 * @LastEditTime: 2025-11-22 16:41:08
 * @LastEditors: yzcheng90
 */
package model

import (
	"time"

	"github.com/yzcheng90/Photography-vue/internal/pkg/types"
)

// Photo 是对象存储列表中的一张照片
type Photo struct {
	ID           int       `json:"id"`
	PublicID     string    `json:"publicId"`
	FileName     string    `json:"fileName"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	OriginalURL  string    `json:"originalUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
}

// GPSCoordinates 经纬度，十进制度数与度分秒两种表示
type GPSCoordinates struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	FormattedLat string  `json:"formattedLat"`
	FormattedLng string  `json:"formattedLng"`
}

// PhotoMetadata 是对外输出的照片元数据记录。
// 除 FileName 和 IsEstimated 外，每个字段都可能未知，未知时统一序列化为 "unknown"。
// 结构体中不含引用类型，按值复制即得到一份独立快照。
type PhotoMetadata struct {
	FileName      string                 `json:"fileName"`
	FileSizeBytes types.Optional[int64]   `json:"fileSize"`
	Width         types.Optional[int]     `json:"width"`
	Height        types.Optional[int]     `json:"height"`
	Megapixels    types.Optional[float64] `json:"megapixels"`

	CaptureTime types.Optional[time.Time] `json:"captureTime"`
	ColorSpace  types.Optional[string]    `json:"colorSpace"`
	Software    types.Optional[string]    `json:"software"`
	Timezone    types.Optional[string]    `json:"timezone"`

	GPS types.Optional[GPSCoordinates] `json:"gps"`

	FocalLengthMm   types.Optional[string] `json:"focalLength"`
	ApertureFNumber types.Optional[string] `json:"aperture"`
	ShutterSpeed    types.Optional[string] `json:"shutter"`
	ISO             types.Optional[string] `json:"iso"`

	CameraMake                types.Optional[string] `json:"cameraMake"`
	CameraModel               types.Optional[string] `json:"cameraModel"`
	LensModel                 types.Optional[string] `json:"lens"`
	LensFocalLengthMm         types.Optional[string] `json:"lensFocalLength"`
	FocalLength35mmEquivalent types.Optional[string] `json:"focalLength35mm"`

	WhiteBalance     types.Optional[string] `json:"whiteBalance"`
	ExposureProgram  types.Optional[string] `json:"exposureProgram"`
	ExposureMode     types.Optional[string] `json:"exposureMode"`
	MeteringMode     types.Optional[string] `json:"meteringMode"`
	FlashState       types.Optional[string] `json:"flash"`
	SceneCaptureType types.Optional[string] `json:"sceneCaptureType"`
	BrightnessEV     types.Optional[string] `json:"brightness"`
	SensorType       types.Optional[string] `json:"sensorType"`

	IsEstimated bool `json:"isEstimated"`
}

// Dimensions 像素尺寸
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
