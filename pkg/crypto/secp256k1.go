package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	secp256k1PrivateKeyLength = 32
	secp256k1PublicKeyLength  = 64 // 去掉 0x04 前缀的非压缩公钥
	secp256k1SignatureLength  = 65 // r || s || v
)

// Secp256k1 keccak256 摘要 + 可恢复的 secp256k1 签名
var Secp256k1 Family = secp256k1Family{}

type secp256k1Family struct{}

func (secp256k1Family) Crypto() Crypto { return CryptoSecp256k1 }

func (secp256k1Family) Name() string { return "secp256k1" }

func (secp256k1Family) SignatureLength() int { return secp256k1SignatureLength }

func (secp256k1Family) Digest(data []byte) common.Hash {
	return ethcrypto.Keccak256Hash(data)
}

func (f secp256k1Family) GenerateKey(rand io.Reader) (PrivateKey, error) {
	buf := make([]byte, secp256k1PrivateKeyLength)
	// 随机数落在 [1, N) 之外的概率极低，重试几次即可
	for i := 0; i < 8; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, fmt.Errorf("read entropy: %w", err)
		}
		if key, err := f.ToPrivateKey(buf); err == nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: entropy source keeps producing out of range scalars", ErrInvalidKeyMaterial)
}

func (secp256k1Family) ToPrivateKey(raw []byte) (PrivateKey, error) {
	if len(raw) != secp256k1PrivateKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrInvalidKeyLength, len(raw), secp256k1PrivateKeyLength)
	}
	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	return &secp256k1Key{key: key, pub: ethcrypto.FromECDSAPub(&key.PublicKey)[1:]}, nil
}

func (f secp256k1Family) Recover(sig Signature, digest common.Hash) ([]byte, error) {
	if err := checkSignature(f, sig); err != nil {
		return nil, err
	}
	pub, err := ethcrypto.Ecrecover(digest[:], sig.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	pub = pub[1:]
	// 恢复出的公钥必须能通过常规验签，排除高 S 值等可塑签名
	if !ethcrypto.VerifySignature(append([]byte{0x04}, pub...), digest[:], sig.Bytes[:64]) {
		return nil, ErrInvalidSignature
	}
	return pub, nil
}

func (f secp256k1Family) Verify(sig Signature, digest common.Hash, pub []byte) error {
	if err := checkSignature(f, sig); err != nil {
		return err
	}
	if len(pub) != secp256k1PublicKeyLength {
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

func (secp256k1Family) PubkeyToAddress(pub []byte) common.Address {
	return common.BytesToAddress(ethcrypto.Keccak256(pub)[12:])
}

type secp256k1Key struct {
	key *ecdsa.PrivateKey
	pub []byte
}

func (k *secp256k1Key) Bytes() []byte {
	return ethcrypto.FromECDSA(k.key)
}

func (k *secp256k1Key) Public() []byte {
	return common.CopyBytes(k.pub)
}

func (k *secp256k1Key) Sign(digest common.Hash) (Signature, error) {
	// RFC6979 确定性签名，底层实现为常数时间
	sig, err := ethcrypto.Sign(digest[:], k.key)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Crypto: CryptoSecp256k1, Bytes: sig}, nil
}
