// Package keypair 持有某个算法族的一对密钥及其地址。
// KeyPair 构造后只读，可以在多个 goroutine 中同时用于签名。
package keypair

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"

	"cita-client/pkg/crypto"
	"cita-client/pkg/safe_random"
)

// KeyPair 私钥 + 公钥 + 派生地址
type KeyPair struct {
	family  crypto.Family
	key     crypto.PrivateKey
	public  []byte
	address common.Address
}

// Generate 使用系统安全随机源生成新密钥对
func Generate(family crypto.Family) (*KeyPair, error) {
	return GenerateFrom(family, safe_random.Reader)
}

// GenerateFrom 使用指定熵源生成密钥对 (测试中可注入确定性熵源)
func GenerateFrom(family crypto.Family, rand io.Reader) (*KeyPair, error) {
	key, err := family.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	return newKeyPair(family, key), nil
}

// FromPrivateKey 从原始私钥字节恢复密钥对
func FromPrivateKey(family crypto.Family, raw []byte) (*KeyPair, error) {
	key, err := family.ToPrivateKey(raw)
	if err != nil {
		return nil, err
	}
	return newKeyPair(family, key), nil
}

// FromHex 从十六进制私钥恢复，前缀可选
func FromHex(family crypto.Family, privHex string) (*KeyPair, error) {
	raw, err := crypto.DecodeHex(privHex)
	if err != nil {
		// 不把输入带进错误信息
		return nil, fmt.Errorf("%w: private key is not valid hex", crypto.ErrInvalidKeyMaterial)
	}
	return FromPrivateKey(family, raw)
}

func newKeyPair(family crypto.Family, key crypto.PrivateKey) *KeyPair {
	pub := key.Public()
	return &KeyPair{
		family:  family,
		key:     key,
		public:  pub,
		address: family.PubkeyToAddress(pub),
	}
}

// Family 密钥所属算法族
func (kp *KeyPair) Family() crypto.Family {
	return kp.family
}

// Crypto 签名信封中使用的算法标记
func (kp *KeyPair) Crypto() crypto.Crypto {
	return kp.family.Crypto()
}

// Address 20 字节地址
func (kp *KeyPair) Address() common.Address {
	return kp.address
}

// PublicKey 公钥字节 (副本)
func (kp *KeyPair) PublicKey() []byte {
	return common.CopyBytes(kp.public)
}

// CompressedPublicKey secp256k1 返回 33 字节压缩公钥，其它算法族原样返回
func (kp *KeyPair) CompressedPublicKey() ([]byte, error) {
	if kp.family.Crypto() != crypto.CryptoSecp256k1 {
		return kp.PublicKey(), nil
	}
	pub, err := btcec.ParsePubKey(append([]byte{0x04}, kp.public...))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return pub.SerializeCompressed(), nil
}

// PrivateKey 导出原始私钥。只应在显式导出 (keystore / keygen) 时调用
func (kp *KeyPair) PrivateKey() []byte {
	return kp.key.Bytes()
}

// Sign 对摘要签名，委托给算法族
func (kp *KeyPair) Sign(digest common.Hash) (crypto.Signature, error) {
	return kp.key.Sign(digest)
}

// String 不输出任何私钥信息
func (kp *KeyPair) String() string {
	return fmt.Sprintf("KeyPair{%s %s}", kp.family.Name(), crypto.FormatAddress(kp.address))
}

// GoString 防止 %#v 打印出私钥
func (kp *KeyPair) GoString() string {
	return kp.String()
}
