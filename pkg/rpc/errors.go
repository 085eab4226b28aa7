package rpc

import (
	"errors"
	"fmt"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Kind 区分是请求没有送达/没有得到应答，还是节点明确拒绝
type Kind int

const (
	KindTransport Kind = iota
	KindNode
)

func (k Kind) String() string {
	if k == KindNode {
		return "node"
	}
	return "transport"
}

var (
	ErrTransport = errors.New("rpc transport error")
	ErrNode      = errors.New("rpc node error")
	ErrNotFound  = errors.New("rpc: not found")
)

// Error 一次 RPC 调用失败。Code 只在 KindNode 时有意义
type Error struct {
	Method string
	Kind   Kind
	Code   int
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindNode {
		return fmt.Sprintf("rpc %s: node error %d: %v", e.Method, e.Code, e.Err)
	}
	return fmt.Sprintf("rpc %s: transport: %v", e.Method, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrNode:
		return e.Kind == KindNode
	}
	return false
}

// classify 节点返回的 JSON-RPC error 对象实现了 rpc.Error，其它都归为传输错误
func classify(method string, err error) *Error {
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) {
		return &Error{Method: method, Kind: KindNode, Code: rpcErr.ErrorCode(), Err: err}
	}
	return &Error{Method: method, Kind: KindTransport, Err: err}
}
