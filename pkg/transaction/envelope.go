package transaction

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"cita-client/pkg/crypto"
)

// UnverifiedTransaction 签名信封：交易 + 签名 + 算法标记
type UnverifiedTransaction struct {
	Transaction Transaction
	Signature   []byte
	Crypto      crypto.Crypto
}

// SignedTransaction 验签后的交易。只由 Verify 产生
type SignedTransaction struct {
	Unverified UnverifiedTransaction
	TxHash     common.Hash
	Signer     []byte
	From       common.Address
}

// Marshal 信封的规范编码，即提交给节点的字节
func (u *UnverifiedTransaction) Marshal() ([]byte, error) {
	tx, err := u.Transaction.Marshal()
	if err != nil {
		return nil, err
	}
	b := appendMessageField(nil, fieldEnvelopeTransaction, tx)
	b = appendBytesField(b, fieldEnvelopeSignature, u.Signature)
	return appendVarintField(b, fieldEnvelopeCrypto, uint64(u.Crypto)), nil
}

// Hash 交易哈希：信封编码的算法族摘要
func (u *UnverifiedTransaction) Hash() (common.Hash, error) {
	family, err := crypto.FamilyOf(u.Crypto)
	if err != nil {
		return common.Hash{}, err
	}
	raw, err := u.Marshal()
	if err != nil {
		return common.Hash{}, err
	}
	return family.Digest(raw), nil
}

// Verify 恢复签名者公钥并计算交易哈希
func (u *UnverifiedTransaction) Verify() (*SignedTransaction, error) {
	family, err := crypto.FamilyOf(u.Crypto)
	if err != nil {
		return nil, err
	}
	digest, err := u.Transaction.SigningHash(family)
	if err != nil {
		return nil, err
	}
	pub, err := family.Recover(crypto.Signature{Crypto: u.Crypto, Bytes: u.Signature}, digest)
	if err != nil {
		return nil, err
	}
	txHash, err := u.Hash()
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{
		Unverified: *u,
		TxHash:     txHash,
		Signer:     pub,
		From:       family.PubkeyToAddress(pub),
	}, nil
}

// UnmarshalUnverified 解码签名信封
func UnmarshalUnverified(data []byte) (*UnverifiedTransaction, error) {
	var (
		u      UnverifiedTransaction
		haveTx bool
	)
	r := newFieldReader(data)
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch num {
		case fieldEnvelopeTransaction:
			var raw []byte
			if raw, err = r.bytes(num, typ); err == nil {
				var tx *Transaction
				if tx, err = UnmarshalTransaction(raw); err == nil {
					u.Transaction = *tx
					haveTx = true
				}
			}
		case fieldEnvelopeSignature:
			u.Signature, err = r.bytes(num, typ)
		case fieldEnvelopeCrypto:
			var tag uint32
			if tag, err = r.uint32(num, typ); err == nil {
				u.Crypto = crypto.Crypto(tag)
				if _, ferr := crypto.FamilyOf(u.Crypto); ferr != nil {
					err = malformed("unknown crypto %d", tag)
				}
			}
		default:
			return nil, malformed("unknown envelope field %d", num)
		}
		if err != nil {
			return nil, err
		}
	}
	if !haveTx {
		return nil, malformed("missing transaction")
	}
	return &u, nil
}

// Marshal 已验签交易的编码
func (s *SignedTransaction) Marshal() ([]byte, error) {
	env, err := s.Unverified.Marshal()
	if err != nil {
		return nil, err
	}
	b := appendMessageField(nil, fieldSignedEnvelope, env)
	b = appendBytesField(b, fieldSignedTxHash, s.TxHash.Bytes())
	return appendBytesField(b, fieldSignedSigner, s.Signer), nil
}

// UnmarshalSigned 解码并重新验签，哈希或签名者不一致时拒绝
func UnmarshalSigned(data []byte) (*SignedTransaction, error) {
	var (
		env    *UnverifiedTransaction
		txHash []byte
		signer []byte
	)
	r := newFieldReader(data)
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch num {
		case fieldSignedEnvelope:
			var raw []byte
			if raw, err = r.bytes(num, typ); err == nil {
				env, err = UnmarshalUnverified(raw)
			}
		case fieldSignedTxHash:
			txHash, err = r.bytes(num, typ)
		case fieldSignedSigner:
			signer, err = r.bytes(num, typ)
		default:
			return nil, malformed("unknown signed transaction field %d", num)
		}
		if err != nil {
			return nil, err
		}
	}
	if env == nil {
		return nil, malformed("missing envelope")
	}

	signed, err := env.Verify()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(signed.TxHash.Bytes(), txHash) {
		return nil, malformed("tx hash does not match envelope")
	}
	if !bytes.Equal(signed.Signer, signer) {
		return nil, malformed("signer does not match signature")
	}
	return signed, nil
}

// EncodeHex 信封编码为提交给节点的 0x 十六进制
func EncodeHex(u *UnverifiedTransaction) (string, error) {
	raw, err := u.Marshal()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// DecodeHex 解析 0x/0X 十六进制 (前缀可选，大小写不敏感) 的信封
func DecodeHex(s string) (*UnverifiedTransaction, error) {
	raw, err := hex.DecodeString(crypto.Remove0x(s))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", ErrMalformedTransaction, err)
	}
	return UnmarshalUnverified(raw)
}
