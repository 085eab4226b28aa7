package safe_random

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Reader 是一个全局共享的加密安全随机数生成器实例。
// 默认为 crypto/rand.Reader，密钥生成、keystore 盐值与 IV 都从这里读取。
var Reader io.Reader = rand.Reader

// GenerateRandomBytes 生成指定长度的安全随机字节切片。
// 如果系统的安全随机数生成器失败，将返回错误。
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, fmt.Errorf("生成随机字节失败: %w", err)
	}
	return b, nil
}
