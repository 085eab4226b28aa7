package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid address")

// Remove0x 去掉十六进制前缀 "0x" 或 "0X"
func Remove0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// DecodeHex 解码十六进制字符串，前缀可选且大小写不敏感
func DecodeHex(s string) ([]byte, error) {
	s = Remove0x(strings.TrimSpace(s))
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return b, nil
}

// ParseAddress 解析 40 位十六进制地址，前缀可选，大小写不敏感 (不校验 EIP-55)
func ParseAddress(s string) (common.Address, error) {
	raw := Remove0x(strings.TrimSpace(s))
	if len(raw) != 2*common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: %q has %d hex chars, need %d", ErrInvalidAddress, s, len(raw), 2*common.AddressLength)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return common.BytesToAddress(b), nil
}

// FormatAddress 地址的规范文本形式：0x + 40 位小写十六进制
func FormatAddress(addr common.Address) string {
	return "0x" + hex.EncodeToString(addr[:])
}

// ConstantTimeEqual 常数时间比较，避免比较私钥/公钥时的时序泄露
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
