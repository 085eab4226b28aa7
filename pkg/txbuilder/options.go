package txbuilder

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
	"cita-client/pkg/transaction"
)

var (
	ErrInvalidOption     = errors.New("invalid transaction option")
	ErrQuotaRequired     = errors.New("quota is required")
	ErrMissingTarget     = errors.New("either a recipient or contract creation is required")
	ErrConflictingTarget = errors.New("recipient and contract creation are mutually exclusive")
	ErrEmptyDeployCode   = errors.New("contract creation requires deploy code")
	ErrChainIDRequired   = errors.New("chain id is required")
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Options 一笔交易的全部意图。由 NewOptions 校验后不可变
type Options struct {
	to              *common.Address
	create          bool
	data            []byte
	quota           uint64
	validUntilBlock uint64
	value           *big.Int
	chainID         *big.Int
	version         uint32
	nonce           string
}

// Option 修改 Options 的函数，参数非法时返回错误
type Option func(*Options) error

// NewOptions 依次应用 opts 并做整体校验
func NewOptions(opts ...Option) (Options, error) {
	return Options{}.With(opts...)
}

// With 在当前值的副本上继续应用 opts
func (o Options) With(opts ...Option) (Options, error) {
	next := o.clone()
	for _, opt := range opts {
		if err := opt(&next); err != nil {
			return Options{}, err
		}
	}
	if err := next.validate(); err != nil {
		return Options{}, err
	}
	return next, nil
}

func (o Options) clone() Options {
	c := o
	if o.to != nil {
		to := *o.to
		c.to = &to
	}
	c.data = common.CopyBytes(o.data)
	if o.value != nil {
		c.value = new(big.Int).Set(o.value)
	}
	if o.chainID != nil {
		c.chainID = new(big.Int).Set(o.chainID)
	}
	return c
}

func (o *Options) validate() error {
	switch {
	case o.to != nil && o.create:
		return ErrConflictingTarget
	case o.to == nil && !o.create:
		return ErrMissingTarget
	case o.create && len(o.data) == 0:
		return ErrEmptyDeployCode
	case o.quota == 0:
		return ErrQuotaRequired
	case o.chainID == nil:
		return ErrChainIDRequired
	}
	if o.chainID.Sign() < 0 || o.chainID.Cmp(maxUint256) > 0 {
		return transaction.ErrInvalidChainID
	}
	if o.version < transaction.VersionV1 && (!o.chainID.IsUint64() || o.chainID.Uint64() > 0xffffffff) {
		return fmt.Errorf("%w: version 0 chain id must fit in uint32", transaction.ErrInvalidChainID)
	}
	return nil
}

func (o Options) To() *common.Address {
	if o.to == nil {
		return nil
	}
	to := *o.to
	return &to
}

func (o Options) IsCreate() bool          { return o.create }
func (o Options) Data() []byte            { return common.CopyBytes(o.data) }
func (o Options) Quota() uint64           { return o.quota }
func (o Options) ValidUntilBlock() uint64 { return o.validUntilBlock }
func (o Options) Version() uint32         { return o.version }
func (o Options) Nonce() string           { return o.nonce }

func (o Options) Value() *big.Int {
	if o.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(o.value)
}

func (o Options) ChainID() *big.Int {
	if o.chainID == nil {
		return nil
	}
	return new(big.Int).Set(o.chainID)
}

// WithTo 接收方地址，0x 前缀可选
func WithTo(addr string) Option {
	return func(o *Options) error {
		a, err := crypto.ParseAddress(addr)
		if err != nil {
			return fmt.Errorf("%w: to: %v", ErrInvalidOption, err)
		}
		o.to = &a
		return nil
	}
}

func WithToAddress(addr common.Address) Option {
	return func(o *Options) error {
		o.to = &addr
		return nil
	}
}

// WithCreate 合约创建，data 为部署代码 (可带构造参数)。与 WithTo 同时使用时校验失败
func WithCreate(code []byte) Option {
	return func(o *Options) error {
		o.create = true
		o.data = common.CopyBytes(code)
		return nil
	}
}

// WithData 原始调用数据
func WithData(data []byte) Option {
	return func(o *Options) error {
		o.data = common.CopyBytes(data)
		return nil
	}
}

// WithCall 用合约接口编码调用数据
func WithCall(iface *abi.Interface, method string, args []string) Option {
	return func(o *Options) error {
		data, err := iface.EncodeInput(method, args)
		if err != nil {
			return err
		}
		o.data = data
		return nil
	}
}

// WithFunction 用字面函数签名编码调用数据，例如 transfer(address,uint256)
func WithFunction(signature string, args []string) Option {
	return func(o *Options) error {
		data, err := abi.EncodeFunction(signature, args)
		if err != nil {
			return err
		}
		o.data = data
		return nil
	}
}

func WithQuota(quota uint64) Option {
	return func(o *Options) error {
		o.quota = quota
		return nil
	}
}

// WithValidUntilBlock 显式指定有效截止块高，不再查询节点
func WithValidUntilBlock(height uint64) Option {
	return func(o *Options) error {
		o.validUntilBlock = height
		return nil
	}
}

// WithValue 转账金额，十进制或 0x 十六进制整数
func WithValue(s string) Option {
	return func(o *Options) error {
		v, err := ParseValue(s)
		if err != nil {
			return err
		}
		o.value = v
		return nil
	}
}

func WithValueBig(v *big.Int) Option {
	return func(o *Options) error {
		if v == nil || v.Sign() < 0 || v.Cmp(maxUint256) > 0 {
			return transaction.ErrInvalidValue
		}
		o.value = new(big.Int).Set(v)
		return nil
	}
}

func WithChainID(id *big.Int) Option {
	return func(o *Options) error {
		if id == nil {
			return ErrChainIDRequired
		}
		o.chainID = new(big.Int).Set(id)
		return nil
	}
}

func WithVersion(v uint32) Option {
	return func(o *Options) error {
		o.version = v
		return nil
	}
}

// WithNonce 指定防重放 nonce，不指定时构建器生成 UUID
func WithNonce(nonce string) Option {
	return func(o *Options) error {
		o.nonce = nonce
		return nil
	}
}

// ParseValue 解析金额：十进制 (可带科学计数法，但必须是整数) 或 0x 十六进制
func ParseValue(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}

	var v *big.Int
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, fmt.Errorf("%w: value %q is not valid hex", ErrInvalidOption, s)
		}
		v = n
	} else {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q: %v", ErrInvalidOption, s, err)
		}
		if !d.IsInteger() {
			return nil, fmt.Errorf("%w: value %q must be an integer", ErrInvalidOption, s)
		}
		v = d.BigInt()
	}

	if v.Sign() < 0 || v.Cmp(maxUint256) > 0 {
		return nil, transaction.ErrInvalidValue
	}
	return v, nil
}
