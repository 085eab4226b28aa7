package abi

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterface = errors.New("abi: invalid interface")
	ErrUnknownMethod    = errors.New("abi: unknown method")
	ErrTypeMismatch     = errors.New("abi: type mismatch")
	ErrArity            = errors.New("abi: argument count mismatch")
	ErrDecode           = errors.New("abi: decode error")
)

// TypeMismatchError 参数字符串无法解析为声明的类型
type TypeMismatchError struct {
	Index  int    // 参数下标 (从 0 开始)
	Type   string // 声明的类型
	Input  string
	Reason string
}

func (e *TypeMismatchError) Error() string {
	input := e.Input
	if len(input) > 80 {
		input = input[:77] + "..."
	}
	return fmt.Sprintf("abi: argument %d: cannot parse %q as %s: %s", e.Index, input, e.Type, e.Reason)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ArityError 参数个数与接口声明不一致
type ArityError struct {
	Method string
	Want   int
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("abi: %s expects %d arguments, got %d", e.Method, e.Want, e.Got)
}

func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}

// DecodeError 编码数据被截断或偏移量不一致
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("abi: decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
