package crypto

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

const (
	// 签名 = ed25519 签名 (64) || 公钥 (32)，节点从签名中取出公钥后验签
	ed25519SignatureLength = ed25519.SignatureSize + ed25519.PublicKeySize
)

// blake2bKey 节点侧 blake2b 哈希使用的固定密钥
var blake2bKey = []byte("CryptapeCryptape")

// Ed25519 blake2b 摘要 + ed25519 签名
var Ed25519 Family = ed25519Family{}

type ed25519Family struct{}

func (ed25519Family) Crypto() Crypto { return CryptoEd25519 }

func (ed25519Family) Name() string { return "ed25519" }

func (ed25519Family) SignatureLength() int { return ed25519SignatureLength }

func (ed25519Family) Digest(data []byte) common.Hash {
	return Blake2b256(data)
}

func (ed25519Family) GenerateKey(rand io.Reader) (PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &ed25519Key{key: priv}, nil
}

// ToPrivateKey 接受 32 字节种子或 64 字节 (种子 || 公钥) 完整私钥
func (ed25519Family) ToPrivateKey(raw []byte) (PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return &ed25519Key{key: ed25519.NewKeyFromSeed(raw)}, nil
	case ed25519.PrivateKeySize:
		key := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		// 后 32 字节必须是种子对应的公钥
		if !ConstantTimeEqual(key[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			return nil, fmt.Errorf("%w: public half does not match seed", ErrInvalidKeyMaterial)
		}
		return &ed25519Key{key: key}, nil
	default:
		return nil, fmt.Errorf("%w: got %d bytes, need %d or %d",
			ErrInvalidKeyLength, len(raw), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}

func (f ed25519Family) Recover(sig Signature, digest common.Hash) ([]byte, error) {
	if err := checkSignature(f, sig); err != nil {
		return nil, err
	}
	pub := sig.Bytes[ed25519.SignatureSize:]
	if !ed25519.Verify(pub, digest[:], sig.Bytes[:ed25519.SignatureSize]) {
		return nil, ErrInvalidSignature
	}
	return common.CopyBytes(pub), nil
}

func (f ed25519Family) Verify(sig Signature, digest common.Hash, pub []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key length %d", ErrInvalidSignature, len(pub))
	}
	recovered, err := f.Recover(sig, digest)
	if err != nil {
		return err
	}
	if !ConstantTimeEqual(recovered, pub) {
		return fmt.Errorf("%w: signer mismatch", ErrInvalidSignature)
	}
	return nil
}

func (ed25519Family) PubkeyToAddress(pub []byte) common.Address {
	h := Blake2b256(pub)
	return common.BytesToAddress(h[12:])
}

type ed25519Key struct {
	key ed25519.PrivateKey
}

// Bytes 返回 32 字节种子
func (k *ed25519Key) Bytes() []byte {
	return common.CopyBytes(k.key.Seed())
}

func (k *ed25519Key) Public() []byte {
	return common.CopyBytes(k.key[ed25519.SeedSize:])
}

func (k *ed25519Key) Sign(digest common.Hash) (Signature, error) {
	sig := make([]byte, 0, ed25519SignatureLength)
	sig = append(sig, ed25519.Sign(k.key, digest[:])...)
	sig = append(sig, k.key[ed25519.SeedSize:]...)
	return Signature{Crypto: CryptoEd25519, Bytes: sig}, nil
}

// Blake2b256 带节点密钥的 blake2b-256
func Blake2b256(data []byte) common.Hash {
	h, err := blake2b.New256(blake2bKey)
	if err != nil {
		// 密钥长度固定为 16 字节，不会出错
		panic(err)
	}
	h.Write(data)
	return common.BytesToHash(h.Sum(nil))
}
