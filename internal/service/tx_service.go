package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"cita-client/internal/service/mq"
	"cita-client/pkg/config"
	"cita-client/pkg/crypto"
	"cita-client/pkg/errno"
	"cita-client/pkg/keypair"
	"cita-client/pkg/logger"
	"cita-client/pkg/rpc"
	"cita-client/pkg/transaction"
	"cita-client/pkg/txbuilder"
)

// Defaults 请求未指定时使用的交易参数 (来自配置)
type Defaults struct {
	Quota   uint64
	Version uint32
	ChainID *big.Int // nil 时从节点 getMetaData 获取
}

// DefaultsFromConfig 从 tx 配置段生成默认参数
func DefaultsFromConfig(cfg config.TxConfig) (Defaults, error) {
	d := Defaults{Quota: cfg.Quota, Version: cfg.Version}
	if cfg.ChainID != "" {
		id, err := txbuilder.ParseValue(cfg.ChainID)
		if err != nil {
			return Defaults{}, fmt.Errorf("tx.chain_id: %w", err)
		}
		d.ChainID = id
	}
	return d, nil
}

// TxIntent 一笔交易的原始输入，字段都是文本形式
type TxIntent struct {
	To              string
	Create          bool
	Data            []byte
	Function        string // 例如 transfer(address,uint256)，与 Args 一起编码为 Data
	Args            []string
	Quota           uint64
	ValidUntilBlock uint64
	Value           string
	ChainID         string
	Version         *uint32
	Nonce           string
}

// TxService 持有一把签名密钥，负责签名与提交
type TxService struct {
	node     Node
	builder  *txbuilder.Builder
	key      *keypair.KeyPair
	defaults Defaults
	producer mq.Producer
	topic    string
	log      *zap.Logger
}

// NewTxService node 可以为 nil (离线签名，需要显式的截止块高与 chain id)
func NewTxService(node Node, builder *txbuilder.Builder, key *keypair.KeyPair, defaults Defaults) *TxService {
	return &TxService{
		node:     node,
		builder:  builder,
		key:      key,
		defaults: defaults,
		log:      logger.Named("service"),
	}
}

func (s *TxService) Address() common.Address {
	return s.key.Address()
}

func (s *TxService) Algorithm() string {
	return s.key.Family().Name()
}

// Options 把输入转换为校验过的构建选项，缺省值依次取自请求、配置、节点元数据
func (s *TxService) Options(ctx context.Context, in TxIntent) (txbuilder.Options, error) {
	version := s.defaults.Version
	if in.Version != nil {
		version = *in.Version
	}
	quota := in.Quota
	if quota == 0 {
		quota = s.defaults.Quota
	}

	opts := []txbuilder.Option{
		txbuilder.WithQuota(quota),
		txbuilder.WithVersion(version),
		txbuilder.WithValidUntilBlock(in.ValidUntilBlock),
		txbuilder.WithValue(in.Value),
		txbuilder.WithNonce(in.Nonce),
	}

	switch {
	case in.Create && (in.To != "" || in.Function != ""):
		return txbuilder.Options{}, txbuilder.ErrConflictingTarget
	case in.Create:
		opts = append(opts, txbuilder.WithCreate(in.Data))
	case in.Function != "":
		opts = append(opts, txbuilder.WithTo(in.To), txbuilder.WithFunction(in.Function, in.Args))
	default:
		if in.To == "" {
			return txbuilder.Options{}, txbuilder.ErrMissingTarget
		}
		opts = append(opts, txbuilder.WithTo(in.To), txbuilder.WithData(in.Data))
	}

	chainID, err := s.chainID(ctx, in.ChainID, version)
	if err != nil {
		return txbuilder.Options{}, err
	}
	opts = append(opts, txbuilder.WithChainID(chainID))

	return txbuilder.NewOptions(opts...)
}

func (s *TxService) chainID(ctx context.Context, requested string, version uint32) (*big.Int, error) {
	if requested != "" {
		id, err := txbuilder.ParseValue(requested)
		if err != nil {
			return nil, fmt.Errorf("%w: chain id: %v", txbuilder.ErrInvalidOption, err)
		}
		return id, nil
	}
	if s.defaults.ChainID != nil {
		return s.defaults.ChainID, nil
	}
	if s.node == nil {
		return nil, txbuilder.ErrChainIDRequired
	}
	meta, err := s.node.GetMetaData(ctx, rpc.HeightLatest)
	if err != nil {
		return nil, err
	}
	return meta.ChainIDFor(version)
}

// Sign 构建并签名，不提交
func (s *TxService) Sign(ctx context.Context, in TxIntent) (*txbuilder.Result, error) {
	o, err := s.Options(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.builder.BuildAndSign(ctx, o, s.key)
}

// SendResult 已提交的交易
type SendResult struct {
	*txbuilder.Result
	Status string
}

// Send 构建、签名并提交
func (s *TxService) Send(ctx context.Context, in TxIntent) (*SendResult, error) {
	if s.node == nil {
		return nil, errno.ErrNoNode
	}
	res, err := s.Sign(ctx, in)
	if err != nil {
		return nil, err
	}
	resp, err := s.node.SendRawTransaction(ctx, res.Hex)
	if err != nil {
		s.log.Warn("send raw transaction failed", zap.String("tx_hash", res.TxHash.Hex()), zap.Error(err))
		return nil, err
	}
	out := &SendResult{Result: res, Status: resp.Status}
	s.publish(ctx, out)
	return out, nil
}

// Call 只读调用，返回原始输出
func (s *TxService) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	if s.node == nil {
		return nil, errno.ErrNoNode
	}
	addr, err := crypto.ParseAddress(to)
	if err != nil {
		return nil, err
	}
	from := s.key.Address()
	return s.node.CallContract(ctx, rpc.CallRequest{From: &from, To: addr, Data: data}, rpc.HeightLatest)
}

// Receipt 查询回执，未上链时返回 rpc.ErrNotFound
func (s *TxService) Receipt(ctx context.Context, hash string) (*rpc.Receipt, error) {
	if s.node == nil {
		return nil, errno.ErrNoNode
	}
	raw, err := crypto.DecodeHex(hash)
	if err != nil || len(raw) != common.HashLength {
		return nil, fmt.Errorf("%w: transaction hash must be 32 bytes", errno.ErrInvalidParams)
	}
	return s.node.GetTransactionReceipt(ctx, common.BytesToHash(raw))
}

// DecodeTx 解码并验签一笔十六进制编码的签名交易
func DecodeTx(hexTx string) (*TxView, error) {
	env, err := transaction.DecodeHex(hexTx)
	if err != nil {
		return nil, err
	}
	signed, err := env.Verify()
	if err != nil {
		return nil, err
	}
	return NewTxView(signed), nil
}
