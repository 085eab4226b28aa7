// Package transaction 交易模型与规范二进制编码。
//
// 编码与链上 protobuf 定义逐字节兼容：字段按编号递增写出，默认值省略，value 固定 32 字节大端。
// 解码只接受这种规范形式，任何偏差都返回 ErrMalformedTransaction。
package transaction

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"cita-client/pkg/crypto"
)

const (
	// ValueLength value 与 chain_id_v1 的固定长度
	ValueLength = 32
	// VersionV1 起使用 to_v1 / chain_id_v1
	VersionV1 uint32 = 1
)

var (
	ErrMalformedTransaction = errors.New("malformed transaction")
	ErrInvalidValue         = errors.New("value must be within [0, 2^256)")
	ErrInvalidChainID       = errors.New("invalid chain id")
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Transaction 未签名交易。To 为 nil 表示创建合约
type Transaction struct {
	To              *common.Address
	Nonce           string
	Quota           uint64
	ValidUntilBlock uint64
	Data            []byte
	Value           *big.Int
	ChainID         *big.Int
	Version         uint32
}

// IsCreate 是否为合约创建交易
func (tx *Transaction) IsCreate() bool {
	return tx.To == nil
}

// Marshal 规范编码，相同的交易总是得到相同的字节
func (tx *Transaction) Marshal() ([]byte, error) {
	value, err := fixed32(tx.Value, ErrInvalidValue)
	if err != nil {
		return nil, err
	}

	var b []byte
	if tx.Version < VersionV1 && tx.To != nil {
		b = appendStringField(b, fieldTo, hex.EncodeToString(tx.To.Bytes()))
	}
	b = appendStringField(b, fieldNonce, tx.Nonce)
	b = appendVarintField(b, fieldQuota, tx.Quota)
	b = appendVarintField(b, fieldValidUntilBlock, tx.ValidUntilBlock)
	b = appendBytesField(b, fieldData, tx.Data)
	b = appendBytesField(b, fieldValue, value)

	if tx.Version < VersionV1 {
		chainID, err := chainIDUint32(tx.ChainID)
		if err != nil {
			return nil, err
		}
		b = appendVarintField(b, fieldChainID, uint64(chainID))
		return appendVarintField(b, fieldVersion, uint64(tx.Version)), nil
	}

	chainID, err := fixed32(tx.ChainID, ErrInvalidChainID)
	if err != nil {
		return nil, err
	}
	b = appendVarintField(b, fieldVersion, uint64(tx.Version))
	if tx.To != nil {
		b = appendBytesField(b, fieldToV1, tx.To.Bytes())
	}
	return appendBytesField(b, fieldChainIDV1, chainID), nil
}

// SigningHash 签名摘要：算法族哈希 (规范编码)
func (tx *Transaction) SigningHash(family crypto.Family) (common.Hash, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return common.Hash{}, err
	}
	return family.Digest(raw), nil
}

// UnmarshalTransaction 解码规范编码的交易
func UnmarshalTransaction(data []byte) (*Transaction, error) {
	var (
		tx        Transaction
		toV0      string
		chainV0   uint32
		toV1      []byte
		chainV1   []byte
		haveValue bool
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
		case fieldTo:
			toV0, err = r.string(num, typ)
		case fieldNonce:
			tx.Nonce, err = r.string(num, typ)
		case fieldQuota:
			tx.Quota, err = r.varint(num, typ)
		case fieldValidUntilBlock:
			tx.ValidUntilBlock, err = r.varint(num, typ)
		case fieldData:
			tx.Data, err = r.bytes(num, typ)
		case fieldValue:
			var v []byte
			if v, err = r.bytes(num, typ); err == nil {
				if len(v) != ValueLength {
					return nil, malformed("value must be %d bytes, got %d", ValueLength, len(v))
				}
				tx.Value = new(big.Int).SetBytes(v)
				haveValue = true
			}
		case fieldChainID:
			chainV0, err = r.uint32(num, typ)
		case fieldVersion:
			tx.Version, err = r.uint32(num, typ)
		case fieldToV1:
			toV1, err = r.bytes(num, typ)
		case fieldChainIDV1:
			chainV1, err = r.bytes(num, typ)
		default:
			return nil, malformed("unknown field %d", num)
		}
		if err != nil {
			return nil, err
		}
	}

	if !haveValue {
		return nil, malformed("missing value")
	}

	if tx.Version < VersionV1 {
		if toV1 != nil || chainV1 != nil {
			return nil, malformed("version %d transaction carries v1 fields", tx.Version)
		}
		if toV0 != "" {
			if len(toV0) != 2*common.AddressLength || !isLowerHex(toV0) {
				return nil, malformed("to must be %d lowercase hex characters", 2*common.AddressLength)
			}
			to := common.HexToAddress(toV0)
			tx.To = &to
		}
		tx.ChainID = new(big.Int).SetUint64(uint64(chainV0))
		return &tx, nil
	}

	if toV0 != "" || chainV0 != 0 {
		return nil, malformed("version %d transaction carries v0 fields", tx.Version)
	}
	if toV1 != nil {
		if len(toV1) != common.AddressLength {
			return nil, malformed("to_v1 must be %d bytes, got %d", common.AddressLength, len(toV1))
		}
		to := common.BytesToAddress(toV1)
		tx.To = &to
	}
	if len(chainV1) != ValueLength {
		return nil, malformed("chain_id_v1 must be %d bytes, got %d", ValueLength, len(chainV1))
	}
	tx.ChainID = new(big.Int).SetBytes(chainV1)
	return &tx, nil
}

// fixed32 非负且小于 2^256 的整数编码为 32 字节大端，nil 视为 0
func fixed32(v *big.Int, errKind error) ([]byte, error) {
	if v == nil {
		return make([]byte, ValueLength), nil
	}
	if v.Sign() < 0 || v.Cmp(maxUint256) > 0 {
		return nil, errKind
	}
	return common.LeftPadBytes(v.Bytes(), ValueLength), nil
}

func chainIDUint32(v *big.Int) (uint32, error) {
	if v == nil {
		return 0, nil
	}
	if v.Sign() < 0 || !v.IsUint64() || v.Uint64() > 0xffffffff {
		return 0, fmt.Errorf("%w: version 0 chain id must fit in uint32", ErrInvalidChainID)
	}
	return uint32(v.Uint64()), nil
}
