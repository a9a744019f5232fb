/*
 * @Description:
 * @Author: yzcheng90
 * @Date: 2025-11-16 10:05:31
 * @LastEditTime: 2025-11-21 09:48:27
 * @LastEditors: yzcheng90
 */
package constant

import (
	"errors"
	"fmt"
)

// 定义业务逻辑相关的标准错误
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrBadRequest 表示请求参数错误，可以由 Handler 转换为 400
	ErrBadRequest = errors.New("错误的请求")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")

	// ErrFeatureNotSupported 表示当前存储源不支持该操作
	ErrFeatureNotSupported = errors.New("当前存储源不支持该操作")
)

// 元数据解码链路上的错误。
// 除 ErrLocatorUnresolvable 外都只在解码内部流转，最终被归一化为 "unknown" 字段。
var (
	// ErrFormatUnsupported 不是真正的错误，表示该格式不走标签解码
	ErrFormatUnsupported = errors.New("该格式不包含可解析的标签目录")

	// ErrDecodeTimeout 标签解码超时
	ErrDecodeTimeout = errors.New("标签解码超时")

	// ErrBufferExceeded 标签目录超出了允许的最大缓冲区
	ErrBufferExceeded = errors.New("标签目录超出最大缓冲区")

	// ErrNoExif 文件中没有 EXIF 数据
	ErrNoExif = errors.New("未找到EXIF数据")

	// ErrProbeFailed 尺寸或大小探测失败
	ErrProbeFailed = errors.New("探测失败")

	// ErrLocatorUnresolvable 资源确实不存在，是 Resolve 唯一会返回给调用方的错误
	ErrLocatorUnresolvable = fmt.Errorf("无法解析的资源地址: %w", ErrNotFound)
)
