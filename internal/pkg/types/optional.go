/*
 * @Description: 统一的可选值类型，所有缺失字段都以同一个 "unknown" 占位值对外呈现
 * @Author: yzcheng90
 * @Date: 2025-11-16 10:12:40
 * @LastEditTime: 2025-11-20 21:05:13
 * @LastEditors: yzcheng90
 */
package types

import (
	"encoding/json"
	"fmt"
)

// Unknown 是任何缺失字段在序列化和展示时使用的唯一占位值。
const Unknown = "unknown"

// Optional 表示一个可能缺失的值。
// 零值即为“未知”，调用方无需区分 nil、零值或不同类型的空值。
type Optional[T any] struct {
	value T
	valid bool
}

// Some 构造一个已知的值。
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, valid: true}
}

// None 构造一个未知的值。
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get 返回值以及它是否已知。
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

// Known 报告值是否已知。
func (o Optional[T]) Known() bool {
	return o.valid
}

// OrElse 在值未知时返回给定的默认值。
func (o Optional[T]) OrElse(def T) T {
	if !o.valid {
		return def
	}
	return o.value
}

// String 已知时输出值本身，未知时输出 Unknown。
func (o Optional[T]) String() string {
	if !o.valid {
		return Unknown
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON 未知值统一编码为 "unknown"。
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return json.Marshal(Unknown)
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON 将 "unknown" 或 null 还原为未知值，用于列表缓存等场景的回读。
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `"`+Unknown+`"` {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("无法解析可选值: %w", err)
	}
	*o = Some(v)
	return nil
}
