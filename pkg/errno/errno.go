package errno

import (
	"context"
	"errors"

	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
	"cita-client/pkg/keystore"
	"cita-client/pkg/rpc"
	"cita-client/pkg/transaction"
	"cita-client/pkg/txbuilder"
)

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrNoNode           = Errno{Code: 10003, Message: "No node configured"}
)

// 输入错误 (20000+)：调用方修正输入后才能成功，重试无意义
var (
	ErrInvalidParams    = Errno{Code: 20101, Message: "Invalid parameters"}
	ErrTypeMismatch     = Errno{Code: 20102, Message: "Argument does not match declared type"}
	ErrArity            = Errno{Code: 20103, Message: "Wrong number of arguments"}
	ErrDecode           = Errno{Code: 20104, Message: "Cannot decode data"}
	ErrInvalidKey       = Errno{Code: 20201, Message: "Invalid private key"}
	ErrInvalidSignature = Errno{Code: 20202, Message: "Invalid signature"}
	ErrKeystore         = Errno{Code: 20203, Message: "Keystore error"}
	ErrMalformedTx      = Errno{Code: 20301, Message: "Malformed transaction"}
	ErrInvalidTx        = Errno{Code: 20302, Message: "Invalid transaction options"}
	ErrNotFound         = Errno{Code: 20401, Message: "Not found"}
)

// 节点/网络错误 (30000+)
var (
	ErrRPCTransport = Errno{Code: 30001, Message: "Node unreachable"}
	ErrRPCNode      = Errno{Code: 30002, Message: "Node rejected the request"}
)

// mapping 按顺序匹配，越具体的放越前面
var mapping = []struct {
	target error
	errno  Errno
}{
	{abi.ErrTypeMismatch, ErrTypeMismatch},
	{abi.ErrArity, ErrArity},
	{abi.ErrDecode, ErrDecode},
	{abi.ErrInvalidInterface, ErrInvalidParams},
	{abi.ErrUnknownMethod, ErrInvalidParams},
	{crypto.ErrInvalidKeyLength, ErrInvalidKey},
	{crypto.ErrInvalidKeyMaterial, ErrInvalidKey},
	{crypto.ErrInvalidSignature, ErrInvalidSignature},
	{crypto.ErrUnknownCrypto, ErrInvalidSignature},
	{crypto.ErrInvalidAddress, ErrInvalidParams},
	{keystore.ErrDecrypt, ErrKeystore},
	{keystore.ErrUnsupported, ErrKeystore},
	{transaction.ErrMalformedTransaction, ErrMalformedTx},
	{transaction.ErrInvalidValue, ErrInvalidTx},
	{transaction.ErrInvalidChainID, ErrInvalidTx},
	{txbuilder.ErrInvalidOption, ErrInvalidTx},
	{txbuilder.ErrQuotaRequired, ErrInvalidTx},
	{txbuilder.ErrMissingTarget, ErrInvalidTx},
	{txbuilder.ErrConflictingTarget, ErrInvalidTx},
	{txbuilder.ErrEmptyDeployCode, ErrInvalidTx},
	{txbuilder.ErrChainIDRequired, ErrInvalidTx},
	{txbuilder.ErrInvalidWindow, ErrInvalidTx},
	{txbuilder.ErrNoHeightSource, ErrInvalidTx},
	{rpc.ErrNotFound, ErrNotFound},
	{rpc.ErrTransport, ErrRPCTransport},
	{rpc.ErrNode, ErrRPCNode},
	{context.DeadlineExceeded, ErrRPCTransport},
	{context.Canceled, ErrRPCTransport},
}

// FromError 找到 err 对应的错误码，未知错误归为 InternalServerError
func FromError(err error) Errno {
	if err == nil {
		return OK
	}
	var e Errno
	if errors.As(err, &e) {
		return e
	}
	var pe *Errno
	if errors.As(err, &pe) {
		return *pe
	}
	for _, m := range mapping {
		if errors.Is(err, m.target) {
			return m.errno
		}
	}
	return InternalServerError
}

// Decode tries to convert an error to Errno.
// 领域错误返回错误码和具体的错误信息
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}
	e := FromError(err)
	switch err.(type) {
	case Errno, *Errno:
		return e.Code, e.Message
	}
	return e.Code, err.Error()
}

// IsRetryable 只有传输层错误值得重试
func IsRetryable(err error) bool {
	return FromError(err).Code == ErrRPCTransport.Code
}

// IsInputError 调用方输入问题 (2xxxx)
func IsInputError(err error) bool {
	code := FromError(err).Code
	return code >= 20000 && code < 30000
}
