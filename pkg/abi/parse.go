package abi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ParseArgument 把参数字符串解析为 go-ethereum 打包时需要的 Go 值。
//
//	整数:   十进制或 0x 十六进制，按位宽做范围检查
//	bool:   true / false
//	bytes:  十六进制，bytesN 长度必须恰好为 N
//	address: 40 位十六进制，0x/0X 前缀可选
//	string: 原样
//	数组/元组: [a,b,...]，可嵌套，元素可用双引号包裹
func ParseArgument(t Type, s string) (any, error) {
	v, err := parseValue(t, s)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// parseArgs 解析整个参数列表，失败时返回带下标的 TypeMismatchError
func parseArgs(method string, args gethabi.Arguments, inputs []string) ([]any, error) {
	if len(inputs) != len(args) {
		return nil, &ArityError{Method: method, Want: len(args), Got: len(inputs)}
	}
	values := make([]any, len(args))
	for i, arg := range args {
		v, err := ParseArgument(arg.Type, inputs[i])
		if err != nil {
			return nil, &TypeMismatchError{Index: i, Type: arg.Type.String(), Input: inputs[i], Reason: err.Error()}
		}
		values[i] = v
	}
	return values, nil
}

var (
	errNotHex     = errors.New("invalid hex")
	errOutOfRange = errors.New("value out of range")
)

func parseValue(t Type, s string) (reflect.Value, error) {
	switch t.T {
	case gethabi.IntTy, gethabi.UintTy:
		n, err := parseInteger(t, strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.New(t.GetType()).Elem()
		switch rv.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv.SetUint(n.Uint64())
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			rv.SetInt(n.Int64())
		default:
			rv.Set(reflect.ValueOf(n))
		}
		return rv, nil

	case gethabi.BoolTy:
		switch strings.TrimSpace(s) {
		case "true":
			return reflect.ValueOf(true), nil
		case "false":
			return reflect.ValueOf(false), nil
		}
		return reflect.Value{}, errors.New("expected true or false")

	case gethabi.StringTy:
		return reflect.ValueOf(s), nil

	case gethabi.AddressTy:
		b, err := decodeHexArg(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, err
		}
		if len(b) != common.AddressLength {
			return reflect.Value{}, fmt.Errorf("address must be %d bytes, got %d", common.AddressLength, len(b))
		}
		return reflect.ValueOf(common.BytesToAddress(b)), nil

	case gethabi.FixedBytesTy:
		b, err := decodeHexArg(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, err
		}
		if len(b) != t.Size {
			return reflect.Value{}, fmt.Errorf("expected exactly %d bytes, got %d", t.Size, len(b))
		}
		rv := reflect.New(t.GetType()).Elem()
		reflect.Copy(rv, reflect.ValueOf(b))
		return rv, nil

	case gethabi.BytesTy:
		b, err := decodeHexArg(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil

	case gethabi.SliceTy, gethabi.ArrayTy:
		elems, err := splitList(s)
		if err != nil {
			return reflect.Value{}, err
		}
		var rv reflect.Value
		if t.T == gethabi.ArrayTy {
			if len(elems) != t.Size {
				return reflect.Value{}, fmt.Errorf("expected %d elements, got %d", t.Size, len(elems))
			}
			rv = reflect.New(t.GetType()).Elem()
		} else {
			rv = reflect.MakeSlice(t.GetType(), len(elems), len(elems))
		}
		for i, e := range elems {
			ev, err := parseValue(*t.Elem, e)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			rv.Index(i).Set(ev)
		}
		return rv, nil

	case gethabi.TupleTy:
		elems, err := splitList(s)
		if err != nil {
			return reflect.Value{}, err
		}
		if len(elems) != len(t.TupleElems) {
			return reflect.Value{}, fmt.Errorf("expected %d tuple components, got %d", len(t.TupleElems), len(elems))
		}
		rv := reflect.New(t.GetType()).Elem()
		for i, e := range elems {
			ev, err := parseValue(*t.TupleElems[i], e)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("component %d: %w", i, err)
			}
			rv.Field(i).Set(ev)
		}
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported type %s", t.String())
}

// parseInteger 十进制或 0x 十六进制，允许前导负号
func parseInteger(t Type, s string) (*big.Int, error) {
	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}
	if body == "" {
		return nil, errors.New("empty integer")
	}

	digits, base := body, 10
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		if len(body) == 2 {
			return nil, errNotHex
		}
		digits, base = body[2:], 16
	}
	// 符号只允许出现一次且在最前面，SetString 自己也接受符号
	if strings.ContainsAny(digits, "+-") {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	n := new(big.Int)
	_, ok := n.SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if neg {
		n.Neg(n)
	}

	var lo, hi *big.Int
	if t.T == gethabi.UintTy {
		lo = new(big.Int)
		hi = new(big.Int).Lsh(big.NewInt(1), uint(t.Size))
	} else {
		hi = new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		lo = new(big.Int).Neg(hi)
	}
	// lo <= n < hi
	if n.Cmp(lo) < 0 || n.Cmp(hi) >= 0 {
		return nil, fmt.Errorf("%w for %s", errOutOfRange, t.String())
	}
	return n, nil
}

func decodeHexArg(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		return nil, fmt.Errorf("%w: odd length", errNotHex)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errNotHex
	}
	return b, nil
}

// splitList 拆分 [a,b,...] 或 (a,b,...) 的顶层元素。
// 嵌套括号内的逗号不拆分，双引号包裹的元素会去掉引号。
func splitList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return nil, errors.New("expected [...]")
	}
	open, closing := s[0], s[len(s)-1]
	if !(open == '[' && closing == ']' || open == '(' && closing == ')') {
		return nil, errors.New("expected [...]")
	}
	body := s[1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	var (
		out     []string
		depth   int
		start   int
		inQuote bool
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				out = append(out, body[start:i])
				start = i + 1
			}
		}
	}
	if inQuote {
		return nil, errors.New("unterminated string")
	}
	if depth != 0 {
		return nil, errors.New("unbalanced brackets")
	}
	out = append(out, body[start:])

	for i, e := range out {
		e = strings.TrimSpace(e)
		if strings.HasPrefix(e, `"`) {
			u, err := strconv.Unquote(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %v", i, err)
			}
			e = u
		}
		out[i] = e
	}
	return out, nil
}
