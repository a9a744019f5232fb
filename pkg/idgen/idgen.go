/*
 * @Description: 照片公共 ID 的生成和解码
 * @Author: yzcheng90
 * @Date: 2025-11-16 14:02:15
 * @LastEditTime: 2025-11-21 22:05:59
 * @LastEditors: yzcheng90
 */
package idgen

import (
	"fmt"
	mrand "math/rand"

	"github.com/sqids/sqids-go"
)

// DefaultAlphabet 是默认的字母表
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// EntityType 定义了不同实体在生成公共 ID 时的类型标识。
const (
	EntityTypePhoto uint64 = 1 // 照片
)

// Encoder 基于 Sqids 的短 ID 编码器
type Encoder struct {
	sqids *sqids.Sqids
}

// shuffleAlphabet 使用种子确定性地打乱字母表
func shuffleAlphabet(seed string) string {
	var seedInt int64
	for i, c := range seed {
		seedInt += int64(c) * int64(i+1)
	}
	r := mrand.New(mrand.NewSource(seedInt))

	alphabet := []rune(DefaultAlphabet)
	r.Shuffle(len(alphabet), func(i, j int) {
		alphabet[i], alphabet[j] = alphabet[j], alphabet[i]
	})
	return string(alphabet)
}

// NewEncoder 使用种子创建编码器，seed 为空时使用默认字母表
func NewEncoder(seed string) (*Encoder, error) {
	alphabet := DefaultAlphabet
	if seed != "" {
		alphabet = shuffleAlphabet(seed)
	}
	s, err := sqids.New(sqids.Options{
		MinLength: 4,
		Alphabet:  alphabet,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Sqids 编码器失败: %w", err)
	}
	return &Encoder{sqids: s}, nil
}

// Encode 将序号和实体类型编码为公共 ID
func (e *Encoder) Encode(id uint, entityType uint64) (string, error) {
	publicID, err := e.sqids.Encode([]uint64{uint64(id), entityType})
	if err != nil {
		return "", fmt.Errorf("编码公共ID失败: %w", err)
	}
	return publicID, nil
}

// Decode 解码公共 ID，实体类型不匹配时返回错误
func (e *Encoder) Decode(publicID string, entityType uint64) (uint, error) {
	numbers := e.sqids.Decode(publicID)
	if len(numbers) != 2 {
		return 0, fmt.Errorf("无法从公共ID解码出预期数量的数字(期望2个，得到%d个)", len(numbers))
	}
	if numbers[1] != entityType {
		return 0, fmt.Errorf("公共ID的实体类型不匹配(期望%d，得到%d)", entityType, numbers[1])
	}
	// 非规范的编码也可能解出数字，需要重新编码校验
	if canonical, err := e.sqids.Encode(numbers); err != nil || canonical != publicID {
		return 0, fmt.Errorf("公共ID '%s' 不是规范编码", publicID)
	}
	return uint(numbers[0]), nil
}
