package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"cita-client/pkg/rpc"
)

// Node 服务层用到的节点能力，rpc.Client 实现了它
type Node interface {
	BlockNumber(ctx context.Context) (uint64, error)
	SendRawTransaction(ctx context.Context, signedHex string) (*rpc.TxResponse, error)
	CallContract(ctx context.Context, req rpc.CallRequest, height string) ([]byte, error)
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*rpc.Receipt, error)
	GetMetaData(ctx context.Context, height string) (*rpc.MetaData, error)
}
