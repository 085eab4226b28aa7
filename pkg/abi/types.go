package abi

import (
	"fmt"
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// Type 调用约定中的一个声明类型
type Type = gethabi.Type

// NewType 解析类型字符串，例如 uint256、bytes32[]、(address,uint256)[2]
func NewType(s string) (Type, error) {
	m, err := typeMarshaling(strings.TrimSpace(s), "")
	if err != nil {
		return Type{}, err
	}
	t, err := gethabi.NewType(m.Type, "", m.Components)
	if err != nil {
		return Type{}, fmt.Errorf("%w: type %q: %v", ErrInvalidInterface, s, err)
	}
	return t, nil
}

// NewArguments 把类型字符串列表转换为参数列表
func NewArguments(types []string) (gethabi.Arguments, error) {
	args := make(gethabi.Arguments, 0, len(types))
	for _, s := range types {
		t, err := NewType(s)
		if err != nil {
			return nil, err
		}
		args = append(args, gethabi.Argument{Type: t})
	}
	return args, nil
}

// ParseSignature 拆分函数签名 name(type1,type2,...)
func ParseSignature(sig string) (string, []string, error) {
	sig = strings.TrimSpace(sig)
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return "", nil, fmt.Errorf("%w: malformed function signature %q", ErrInvalidInterface, sig)
	}
	name := sig[:open]
	for _, r := range name {
		if !(r == '_' || r == '$' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "", nil, fmt.Errorf("%w: malformed function name %q", ErrInvalidInterface, name)
		}
	}
	types, err := splitTypeList(sig[open+1 : len(sig)-1])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %v", ErrInvalidInterface, sig, err)
	}
	return name, types, nil
}

// ParseTypeList 拆分逗号分隔的类型列表，元组内部的逗号不拆分
func ParseTypeList(s string) ([]string, error) {
	types, err := splitTypeList(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidInterface, s, err)
	}
	return types, nil
}

// CanonicalSignature name(type1,type2) 的规范形式，用于计算函数选择器
func CanonicalSignature(name string, args gethabi.Arguments) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type.String()
	}
	return name + "(" + strings.Join(types, ",") + ")"
}

// typeMarshaling 把元组写法 (a,b)[] 转换为 go-ethereum 需要的 tuple + components 形式
func typeMarshaling(s, name string) (gethabi.ArgumentMarshaling, error) {
	if s == "" {
		return gethabi.ArgumentMarshaling{}, fmt.Errorf("%w: empty type", ErrInvalidInterface)
	}
	if s[0] != '(' {
		return gethabi.ArgumentMarshaling{Name: name, Type: normalizeElementary(s)}, nil
	}

	closeAt := matchingParen(s)
	if closeAt < 0 {
		return gethabi.ArgumentMarshaling{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidInterface, s)
	}
	suffix := s[closeAt+1:]
	if suffix != "" && !strings.HasPrefix(suffix, "[") {
		return gethabi.ArgumentMarshaling{}, fmt.Errorf("%w: unexpected %q after tuple", ErrInvalidInterface, suffix)
	}

	inner, err := splitTypeList(s[1:closeAt])
	if err != nil {
		return gethabi.ArgumentMarshaling{}, err
	}
	if len(inner) == 0 {
		return gethabi.ArgumentMarshaling{}, fmt.Errorf("%w: empty tuple", ErrInvalidInterface)
	}
	components := make([]gethabi.ArgumentMarshaling, len(inner))
	for i, elem := range inner {
		// go-ethereum 的元组字段必须具名
		components[i], err = typeMarshaling(elem, "f"+strconv.Itoa(i))
		if err != nil {
			return gethabi.ArgumentMarshaling{}, err
		}
	}
	return gethabi.ArgumentMarshaling{Name: name, Type: "tuple" + suffix, Components: components}, nil
}

// normalizeElementary uint/int 是 uint256/int256 的别名
func normalizeElementary(s string) string {
	for _, alias := range []string{"uint", "int"} {
		if s == alias || strings.HasPrefix(s, alias+"[") {
			return alias + "256" + s[len(alias):]
		}
	}
	return s
}

func matchingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTypeList 按顶层逗号拆分，忽略括号内的逗号
func splitTypeList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", s)
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	out = append(out, strings.TrimSpace(s[start:]))
	for _, t := range out {
		if t == "" {
			return nil, fmt.Errorf("empty type in %q", s)
		}
	}
	return out, nil
}
