// Package txbuilder 把调用意图组装成签名交易：
// 查询块高 → 组装未签名交易 → 摘要 → 签名 → 信封 → 0x 十六进制。
// 任一步失败都原样返回错误，不会产出半成品。
package txbuilder

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
	"cita-client/pkg/logger"
	"cita-client/pkg/monitor"
	"cita-client/pkg/transaction"
)

const (
	// DefaultValidWindow 未指定截止块高时，在当前块高上追加的块数
	DefaultValidWindow uint64 = 88
	// MaxValidWindow 节点接受的最大窗口
	MaxValidWindow uint64 = 100
)

var (
	ErrInvalidWindow  = fmt.Errorf("valid window must be within [1, %d]", MaxValidWindow)
	ErrNoHeightSource = errors.New("valid_until_block not set and no height source configured")
	ErrSignerMismatch = errors.New("signed envelope does not recover to the signing key")
)

// HeightSource 提供当前块高，一般是 rpc.Client
type HeightSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Builder 无状态，可并发使用
type Builder struct {
	heights HeightSource
	window  uint64
	nonce   func() string
	log     *zap.Logger
}

type BuilderOption func(*Builder) error

// WithValidWindow 设置块高窗口 (1..MaxValidWindow)
func WithValidWindow(blocks uint64) BuilderOption {
	return func(b *Builder) error {
		if blocks == 0 || blocks > MaxValidWindow {
			return ErrInvalidWindow
		}
		b.window = blocks
		return nil
	}
}

// WithNonceSource 替换 nonce 生成器
func WithNonceSource(f func() string) BuilderOption {
	return func(b *Builder) error {
		b.nonce = f
		return nil
	}
}

func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) error {
		b.log = l
		return nil
	}
}

// New heights 可以为 nil，此时每笔交易都必须显式指定 ValidUntilBlock
func New(heights HeightSource, opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		heights: heights,
		window:  DefaultValidWindow,
		nonce:   uuid.NewString,
		log:     logger.Named("txbuilder"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Window 当前块高窗口
func (b *Builder) Window() uint64 {
	return b.window
}

// Result 一笔签好的交易
type Result struct {
	Envelope *transaction.UnverifiedTransaction
	Raw      []byte
	Hex      string
	TxHash   common.Hash
	From     common.Address
}

// BuildUnsigned 补全 nonce 与截止块高，生成未签名交易
func (b *Builder) BuildUnsigned(ctx context.Context, o Options) (*transaction.Transaction, error) {
	if err := o.validate(); err != nil {
		monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageOptions).Inc()
		return nil, err
	}

	vub := o.ValidUntilBlock()
	if vub == 0 {
		if b.heights == nil {
			monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageHeight).Inc()
			return nil, ErrNoHeightSource
		}
		height, err := b.heights.BlockNumber(ctx)
		if err != nil {
			monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageHeight).Inc()
			b.log.Warn("block height lookup failed", zap.Error(err))
			return nil, err
		}
		vub = height + b.window
	}

	nonce := o.Nonce()
	if nonce == "" {
		nonce = b.nonce()
	}

	tx := &transaction.Transaction{
		To:              o.To(),
		Nonce:           nonce,
		Quota:           o.Quota(),
		ValidUntilBlock: vub,
		Data:            o.Data(),
		Value:           o.Value(),
		ChainID:         o.ChainID(),
		Version:         o.Version(),
	}
	if _, err := tx.Marshal(); err != nil {
		monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageEncode).Inc()
		return nil, err
	}
	return tx, nil
}

// Sign 摘要 + 签名，返回信封
func (b *Builder) Sign(tx *transaction.Transaction, kp *keypair.KeyPair) (*transaction.UnverifiedTransaction, error) {
	start := time.Now()
	defer func() { monitor.TxSignDuration.Observe(time.Since(start).Seconds()) }()

	digest, err := tx.SigningHash(kp.Family())
	if err != nil {
		monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageEncode).Inc()
		return nil, err
	}
	sig, err := kp.Sign(digest)
	if err != nil {
		monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageSign).Inc()
		return nil, err
	}
	return &transaction.UnverifiedTransaction{
		Transaction: *tx,
		Signature:   sig.Bytes,
		Crypto:      kp.Crypto(),
	}, nil
}

// BuildAndSign 完整流水线。返回前会对信封验签一次
func (b *Builder) BuildAndSign(ctx context.Context, o Options, kp *keypair.KeyPair) (*Result, error) {
	tx, err := b.BuildUnsigned(ctx, o)
	if err != nil {
		return nil, err
	}
	// 签名前检查取消，取消后不产生任何签名
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env, err := b.Sign(tx, kp)
	if err != nil {
		return nil, err
	}

	signed, err := env.Verify()
	if err != nil {
		monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageVerify).Inc()
		return nil, err
	}
	if signed.From != kp.Address() {
		monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageVerify).Inc()
		return nil, ErrSignerMismatch
	}

	raw, err := env.Marshal()
	if err != nil {
		monitor.TxBuildFailuresTotal.WithLabelValues(monitor.StageSerialize).Inc()
		return nil, err
	}

	monitor.TxBuiltTotal.WithLabelValues(kp.Crypto().String()).Inc()
	b.log.Info("transaction signed",
		zap.String("tx_hash", signed.TxHash.Hex()),
		zap.String("from", crypto.FormatAddress(signed.From)),
		zap.Bool("create", tx.IsCreate()),
		zap.Uint64("quota", tx.Quota),
		zap.Uint64("valid_until_block", tx.ValidUntilBlock),
		zap.Uint32("version", tx.Version))

	return &Result{
		Envelope: env,
		Raw:      raw,
		Hex:      "0x" + hex.EncodeToString(raw),
		TxHash:   signed.TxHash,
		From:     signed.From,
	}, nil
}
