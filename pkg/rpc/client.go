// Package rpc 节点 JSON-RPC 边界。
//
// Call 是唯一的出口，类型化方法只负责拼参数和解析结果；
// 所有失败都以 *Error 返回并区分传输错误和节点错误。
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"cita-client/pkg/cache"
	"cita-client/pkg/logger"
	"cita-client/pkg/monitor"
)

const (
	// HeightLatest 最新块
	HeightLatest = "latest"

	defaultTimeout = 10 * time.Second
	defaultMetaTTL = 30 * time.Second
)

// Client 可以在多个 goroutine 中共享
type Client struct {
	c       *gethrpc.Client
	timeout time.Duration
	meta    cache.Cache
	metaTTL time.Duration
	log     *zap.Logger
}

type Option func(*Client)

// WithTimeout 单次调用超时，0 表示只使用调用方的 context
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetaCache 替换链元数据缓存
func WithMetaCache(m cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.meta = m
		c.metaTTL = ttl
	}
}

// Dial 连接节点，支持 http(s) 与 ws(s)
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	raw, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, &Error{Method: "dial", Kind: KindTransport, Err: err}
	}
	return NewClient(raw, opts...), nil
}

// NewClient 包装已有的 go-ethereum rpc 连接
func NewClient(raw *gethrpc.Client, opts ...Option) *Client {
	c := &Client{
		c:       raw,
		timeout: defaultTimeout,
		metaTTL: defaultMetaTTL,
		log:     logger.Named("rpc"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.meta == nil {
		c.meta = cache.NewMemoryCache(c.metaTTL, 2*c.metaTTL)
	}
	return c
}

func (c *Client) Close() {
	c.c.Close()
}

// Call 通用调用，返回未解析的 result
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var result json.RawMessage
	err := c.c.CallContext(ctx, &result, method, params...)
	if errors.Is(err, gethrpc.ErrNoResult) {
		result, err = json.RawMessage("null"), nil
	}
	elapsed := time.Since(start)
	monitor.RPCRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())

	if err != nil {
		rerr := classify(method, err)
		monitor.RPCErrorsTotal.WithLabelValues(method, rerr.Kind.String()).Inc()
		c.log.Warn("rpc call failed",
			zap.String("method", method),
			zap.Stringer("kind", rerr.Kind),
			zap.Int("code", rerr.Code),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, rerr
	}
	c.log.Debug("rpc call", zap.String("method", method), zap.Duration("elapsed", elapsed))
	return result, nil
}

// callInto 调用并把 result 解析到 out；result 为 null 时返回 ErrNotFound
func (c *Client) callInto(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	raw, err := c.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return &Error{Method: method, Kind: KindNode, Err: ErrNotFound}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Method: method, Kind: KindNode, Err: fmt.Errorf("unexpected result: %w", err)}
	}
	return nil
}

// BlockNumber 当前块高
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.callInto(ctx, &n, "blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// PeerCount 节点连接数
func (c *Client) PeerCount(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.callInto(ctx, &n, "peerCount"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// SendRawTransaction 提交信封的 0x 十六进制编码
func (c *Client) SendRawTransaction(ctx context.Context, signedHex string) (*TxResponse, error) {
	var resp TxResponse
	if err := c.callInto(ctx, &resp, "sendRawTransaction", signedHex); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CallContract 只读调用，height 为空时使用 latest
func (c *Client) CallContract(ctx context.Context, req CallRequest, height string) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.callInto(ctx, &out, "call", req, heightParam(height)); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransactionReceipt 交易未上链时返回 ErrNotFound
func (c *Client) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var r Receipt
	if err := c.callInto(ctx, &r, "getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetTransaction(ctx context.Context, hash common.Hash) (*TransactionInfo, error) {
	var t TransactionInfo
	if err := c.callInto(ctx, &t, "getTransaction", hash); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBalance 余额
func (c *Client) GetBalance(ctx context.Context, addr common.Address, height string) (*big.Int, error) {
	var b hexutil.Big
	if err := c.callInto(ctx, &b, "getBalance", addr, heightParam(height)); err != nil {
		return nil, err
	}
	return b.ToInt(), nil
}

// GetMetaData 链元数据，按高度缓存
func (c *Client) GetMetaData(ctx context.Context, height string) (*MetaData, error) {
	height = heightParam(height)
	key := "rpc:meta:" + strings.ToLower(height)

	var m MetaData
	if err := c.meta.Get(ctx, key, &m); err == nil {
		return &m, nil
	}
	if err := c.callInto(ctx, &m, "getMetaData", height); err != nil {
		return nil, err
	}
	if err := c.meta.Set(ctx, key, &m, c.metaTTL); err != nil {
		c.log.Warn("cache metadata failed", zap.Error(err))
	}
	return &m, nil
}

func heightParam(h string) string {
	if h == "" {
		return HeightLatest
	}
	return h
}
