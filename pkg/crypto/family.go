// Package crypto 提供交易签名使用的两套算法族：
// secp256k1 + keccak256 与 ed25519 + blake2b。
// 交易构建器只面向 Family 接口编程，不感知具体算法。
package crypto

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Crypto 是写入签名交易信封中的算法标记，节点据此选择验签路径
type Crypto int32

const (
	CryptoSecp256k1 Crypto = 0 // 默认算法 (protobuf enum DEFAULT)
	CryptoEd25519   Crypto = 1
)

func (c Crypto) String() string {
	switch c {
	case CryptoSecp256k1:
		return "secp256k1"
	case CryptoEd25519:
		return "ed25519"
	default:
		return fmt.Sprintf("crypto(%d)", int32(c))
	}
}

var (
	ErrInvalidKeyLength   = errors.New("invalid private key length")
	ErrInvalidKeyMaterial = errors.New("invalid private key material")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrUnknownCrypto      = errors.New("unknown crypto algorithm")
)

// Signature 一次签名的结果，Bytes 长度由算法族决定
type Signature struct {
	Crypto Crypto
	Bytes  []byte
}

// PrivateKey 某个算法族的私钥。实现必须是只读的，可以被多个 goroutine 同时用于签名
type PrivateKey interface {
	// Bytes 返回原始私钥字节 (仅用于显式导出，例如 keystore)
	Bytes() []byte
	// Public 返回公钥字节
	Public() []byte
	// Sign 对 32 字节摘要签名
	Sign(digest common.Hash) (Signature, error)
}

// Family 算法族：摘要 + 签名/验签 + 地址派生
type Family interface {
	Crypto() Crypto
	Name() string

	// Digest 计算内容哈希，既用于地址派生也用于交易签名哈希
	Digest(data []byte) common.Hash

	// GenerateKey 使用给定熵源生成新私钥
	GenerateKey(rand io.Reader) (PrivateKey, error)
	// ToPrivateKey 从原始字节恢复私钥
	// 长度不对返回 ErrInvalidKeyLength，不是合法标量返回 ErrInvalidKeyMaterial
	ToPrivateKey(raw []byte) (PrivateKey, error)

	// Recover 从签名中恢复公钥并校验签名与摘要匹配
	Recover(sig Signature, digest common.Hash) ([]byte, error)
	// Verify 用给定公钥验证签名
	Verify(sig Signature, digest common.Hash, pub []byte) error

	// PubkeyToAddress 公钥 -> 20 字节地址
	PubkeyToAddress(pub []byte) common.Address

	// SignatureLength 签名字节长度
	SignatureLength() int
}

var families = map[Crypto]Family{
	CryptoSecp256k1: Secp256k1,
	CryptoEd25519:   Ed25519,
}

// FamilyOf 根据信封中的算法标记查找算法族
func FamilyOf(c Crypto) (Family, error) {
	f, ok := families[c]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCrypto, int32(c))
	}
	return f, nil
}

// FamilyByName 根据名称 (配置文件 / 命令行) 查找算法族，大小写不敏感
func FamilyByName(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "secp256k1", "sha3", "keccak":
		return Secp256k1, nil
	case "ed25519", "blake2b":
		return Ed25519, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCrypto, name)
	}
}

func checkSignature(f Family, sig Signature) error {
	if sig.Crypto != f.Crypto() {
		return fmt.Errorf("%w: crypto tag %s, expected %s", ErrInvalidSignature, sig.Crypto, f.Crypto())
	}
	if len(sig.Bytes) != f.SignatureLength() {
		return fmt.Errorf("%w: length %d, expected %d", ErrInvalidSignature, len(sig.Bytes), f.SignatureLength())
	}
	return nil
}
