// Package abi 合约调用约定的编解码。
//
// 打包与解包使用 go-ethereum 的 accounts/abi；本包负责把命令行/HTTP 传入的参数字符串
// 解析为对应的 Go 值、校验参数个数，并把解码结果包装为 Value。
package abi

import (
	"bytes"
	"fmt"
	"sort"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLength 函数选择器长度
const SelectorLength = 4

// Interface 合约接口描述 (ABI JSON)
type Interface struct {
	abi gethabi.ABI
}

// ParseInterface 解析标准的合约接口 JSON
func ParseInterface(data []byte) (*Interface, error) {
	parsed, err := gethabi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterface, err)
	}
	return &Interface{abi: parsed}, nil
}

// Methods 按名称排序的方法签名列表
func (i *Interface) Methods() []string {
	sigs := make([]string, 0, len(i.abi.Methods))
	for _, m := range i.abi.Methods {
		sigs = append(sigs, m.Sig)
	}
	sort.Strings(sigs)
	return sigs
}

// Method 按名称或完整签名查找方法。
// 重载方法可以用 transfer(address,uint256) 这样的签名区分。
func (i *Interface) Method(name string) (gethabi.Method, error) {
	if m, ok := i.abi.Methods[name]; ok {
		return m, nil
	}
	for _, m := range i.abi.Methods {
		if m.Sig == name {
			return m, nil
		}
	}
	return gethabi.Method{}, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// EncodeInput 选择器 + 参数编码
func (i *Interface) EncodeInput(method string, args []string) ([]byte, error) {
	m, err := i.Method(method)
	if err != nil {
		return nil, err
	}
	params, err := encode(m.Sig, m.Inputs, args)
	if err != nil {
		return nil, err
	}
	return append(common.CopyBytes(m.ID), params...), nil
}

// EncodeConstructor 部署代码 + 构造函数参数编码
func (i *Interface) EncodeConstructor(code []byte, args []string) ([]byte, error) {
	params, err := encode("constructor", i.abi.Constructor.Inputs, args)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(code)+len(params))
	out = append(out, code...)
	return append(out, params...), nil
}

// DecodeOutput 解码方法返回值
func (i *Interface) DecodeOutput(method string, data []byte) ([]Value, error) {
	m, err := i.Method(method)
	if err != nil {
		return nil, err
	}
	return decode(m.Outputs, data)
}

// DecodeInput 解码完整的调用数据 (含选择器)
func (i *Interface) DecodeInput(data []byte) (string, []Value, error) {
	if len(data) < SelectorLength {
		return "", nil, &DecodeError{Err: fmt.Errorf("call data shorter than selector: %d bytes", len(data))}
	}
	m, err := i.abi.MethodById(data[:SelectorLength])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnknownMethod, err)
	}
	values, err := decode(m.Inputs, data[SelectorLength:])
	if err != nil {
		return "", nil, err
	}
	return m.Sig, values, nil
}

// Selector keccak256(规范签名) 的前 4 字节。
// 签名中的类型别名 (uint、int) 会先规范化。
func Selector(signature string) [SelectorLength]byte {
	var sel [SelectorLength]byte
	name, types, err := ParseSignature(signature)
	if err == nil {
		if args, err := NewArguments(types); err == nil {
			signature = CanonicalSignature(name, args)
		}
	}
	copy(sel[:], crypto.Keccak256([]byte(signature))[:SelectorLength])
	return sel
}

// EncodeFunction 按字面函数签名编码调用数据，例如 transfer(address,uint256)
func EncodeFunction(signature string, args []string) ([]byte, error) {
	name, types, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	arguments, err := NewArguments(types)
	if err != nil {
		return nil, err
	}
	canonical := CanonicalSignature(name, arguments)
	params, err := encode(canonical, arguments, args)
	if err != nil {
		return nil, err
	}
	sel := crypto.Keccak256([]byte(canonical))[:SelectorLength]
	return append(sel, params...), nil
}

// EncodeParams 只编码参数，不带选择器
func EncodeParams(types []string, args []string) ([]byte, error) {
	arguments, err := NewArguments(types)
	if err != nil {
		return nil, err
	}
	return encode("params", arguments, args)
}

// DecodeParams 按类型列表解码
func DecodeParams(types []string, data []byte) ([]Value, error) {
	arguments, err := NewArguments(types)
	if err != nil {
		return nil, err
	}
	return decode(arguments, data)
}

// PackValues 打包已经是 Go 值的参数
func PackValues(types []string, values ...any) ([]byte, error) {
	arguments, err := NewArguments(types)
	if err != nil {
		return nil, err
	}
	if len(values) != len(arguments) {
		return nil, &ArityError{Method: "params", Want: len(arguments), Got: len(values)}
	}
	out, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return out, nil
}

func encode(method string, args gethabi.Arguments, inputs []string) ([]byte, error) {
	values, err := parseArgs(method, args, inputs)
	if err != nil {
		return nil, err
	}
	out, err := args.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return out, nil
}

func decode(args gethabi.Arguments, data []byte) (values []Value, err error) {
	// 底层解码器遇到恶意偏移量时可能 panic，统一转换为 DecodeError
	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = &DecodeError{Err: fmt.Errorf("%v", r)}
		}
	}()

	raw, err := args.Unpack(data)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if len(raw) != len(args) {
		return nil, &DecodeError{Err: fmt.Errorf("expected %d values, got %d", len(args), len(raw))}
	}
	values = make([]Value, len(args))
	for i, arg := range args {
		values[i] = Value{Type: arg.Type, Data: raw[i]}
	}
	return values, nil
}
