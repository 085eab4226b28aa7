// Package contract 绑定了地址与接口描述的合约客户端。
// 同一个 Contract 对任意 ABI 可用，不需要为每个合约生成代码。
package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
	"cita-client/pkg/rpc"
	"cita-client/pkg/txbuilder"
)

// Backend 合约调用需要的节点能力，rpc.Client 实现了它
type Backend interface {
	CallContract(ctx context.Context, req rpc.CallRequest, height string) ([]byte, error)
	SendRawTransaction(ctx context.Context, signedHex string) (*rpc.TxResponse, error)
}

// SendResult 已签名并被节点接受的交易
type SendResult struct {
	*txbuilder.Result
	Status string
}

type Contract struct {
	backend Backend
	address common.Address
	iface   *abi.Interface
	builder *txbuilder.Builder
}

// New builder 只在 Send 时需要，可以为 nil
func New(backend Backend, address string, abiJSON []byte, builder *txbuilder.Builder) (*Contract, error) {
	addr, err := crypto.ParseAddress(address)
	if err != nil {
		return nil, err
	}
	iface, err := abi.ParseInterface(abiJSON)
	if err != nil {
		return nil, err
	}
	return &Contract{backend: backend, address: addr, iface: iface, builder: builder}, nil
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) Interface() *abi.Interface {
	return c.iface
}

// PrepareCall 编码调用数据。to 为空时使用合约自身地址
func (c *Contract) PrepareCall(method string, args []string, to string) ([]byte, common.Address, error) {
	data, err := c.iface.EncodeInput(method, args)
	if err != nil {
		return nil, common.Address{}, err
	}
	addr := c.address
	if to != "" {
		if addr, err = crypto.ParseAddress(to); err != nil {
			return nil, common.Address{}, err
		}
	}
	return data, addr, nil
}

// Call 只读调用 (latest)，按接口解码返回值
func (c *Contract) Call(ctx context.Context, method string, args ...string) ([]abi.Value, error) {
	data, to, err := c.PrepareCall(method, args, "")
	if err != nil {
		return nil, err
	}
	out, err := c.backend.CallContract(ctx, rpc.CallRequest{To: to, Data: data}, rpc.HeightLatest)
	if err != nil {
		return nil, err
	}
	return c.iface.DecodeOutput(method, out)
}

// Send 构建、签名并提交一笔调用交易。opts 至少需要提供 quota 与 chain id
func (c *Contract) Send(ctx context.Context, kp *keypair.KeyPair, method string, args []string, opts ...txbuilder.Option) (*SendResult, error) {
	if c.builder == nil {
		return nil, fmt.Errorf("contract %s: no transaction builder configured", crypto.FormatAddress(c.address))
	}
	o, err := txbuilder.NewOptions(append(append([]txbuilder.Option{}, opts...),
		txbuilder.WithToAddress(c.address),
		txbuilder.WithCall(c.iface, method, args),
	)...)
	if err != nil {
		return nil, err
	}
	return submit(ctx, c.backend, c.builder, o, kp)
}

// Deploy 部署合约：部署代码 + 构造参数
func Deploy(ctx context.Context, backend Backend, builder *txbuilder.Builder, kp *keypair.KeyPair,
	abiJSON []byte, code []byte, args []string, opts ...txbuilder.Option) (*SendResult, error) {
	iface, err := abi.ParseInterface(abiJSON)
	if err != nil {
		return nil, err
	}
	deploy, err := iface.EncodeConstructor(code, args)
	if err != nil {
		return nil, err
	}
	o, err := txbuilder.NewOptions(append(append([]txbuilder.Option{}, opts...), txbuilder.WithCreate(deploy))...)
	if err != nil {
		return nil, err
	}
	return submit(ctx, backend, builder, o, kp)
}

func submit(ctx context.Context, backend Backend, builder *txbuilder.Builder, o txbuilder.Options, kp *keypair.KeyPair) (*SendResult, error) {
	res, err := builder.BuildAndSign(ctx, o, kp)
	if err != nil {
		return nil, err
	}
	resp, err := backend.SendRawTransaction(ctx, res.Hex)
	if err != nil {
		return nil, err
	}
	return &SendResult{Result: res, Status: resp.Status}, nil
}
