package abi

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Value 解码结果：声明类型 + go-ethereum 对应的 Go 表示
type Value struct {
	Type Type
	Data any
}

var (
	bigIntType  = reflect.TypeOf((*big.Int)(nil))
	addressType = reflect.TypeOf(common.Address{})
)

// Equal 结构化比较，大整数按数值比较
func (v Value) Equal(o Value) bool {
	if v.Type.String() != o.Type.String() {
		return false
	}
	return equalData(v.Data, o.Data)
}

// EqualValues 逐个比较两组值
func EqualValues(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func equalData(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return equalReflect(reflect.ValueOf(a), reflect.ValueOf(b))
}

func equalReflect(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	if a.Type() == bigIntType {
		x, y := a.Interface().(*big.Int), b.Interface().(*big.Int)
		if x == nil || y == nil {
			return x == nil && y == nil
		}
		return x.Cmp(y) == 0
	}
	switch a.Kind() {
	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalReflect(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !equalReflect(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Ptr:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return equalReflect(a.Elem(), b.Elem())
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

// String 与 ParseArgument 接受的格式一致：整数十进制，字节和地址为 0x 小写十六进制
func (v Value) String() string {
	if v.Data == nil {
		return ""
	}
	return formatReflect(reflect.ValueOf(v.Data), &v.Type, false)
}

// isByteType 只有 bytes / bytesN 输出十六进制，uint8[] 仍按数组输出
func isByteType(t *Type) bool {
	return t != nil && (t.T == gethabi.BytesTy || t.T == gethabi.FixedBytesTy || t.T == gethabi.FunctionTy)
}

func formatReflect(rv reflect.Value, t *Type, nested bool) string {
	if rv.Type() == bigIntType {
		if rv.IsNil() {
			return "0"
		}
		return rv.Interface().(*big.Int).String()
	}
	if rv.Type() == addressType {
		return "0x" + hex.EncodeToString(rv.Interface().(common.Address).Bytes())
	}

	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.String:
		if nested {
			return strconv.Quote(rv.String())
		}
		return rv.String()
	case reflect.Slice, reflect.Array:
		if isByteType(t) {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return "0x" + hex.EncodeToString(b)
		}
		var elem *Type
		if t != nil {
			elem = t.Elem
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatReflect(rv.Index(i), elem, true)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Struct:
		parts := make([]string, rv.NumField())
		for i := range parts {
			var field *Type
			if t != nil && i < len(t.TupleElems) {
				field = t.TupleElems[i]
			}
			parts[i] = formatReflect(rv.Field(i), field, true)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Ptr:
		if rv.IsNil() {
			return "null"
		}
		return formatReflect(rv.Elem(), t, nested)
	}
	return fmt.Sprint(rv.Interface())
}
