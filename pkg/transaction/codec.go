package transaction

import (
	"encoding/hex"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// 字段编号与链上 protobuf 定义保持一致
const (
	fieldTo              protowire.Number = 1
	fieldNonce           protowire.Number = 2
	fieldQuota           protowire.Number = 3
	fieldValidUntilBlock protowire.Number = 4
	fieldData            protowire.Number = 5
	fieldValue           protowire.Number = 6
	fieldChainID         protowire.Number = 7
	fieldVersion         protowire.Number = 8
	fieldToV1            protowire.Number = 9
	fieldChainIDV1       protowire.Number = 10

	fieldEnvelopeTransaction protowire.Number = 1
	fieldEnvelopeSignature   protowire.Number = 2
	fieldEnvelopeCrypto      protowire.Number = 3

	fieldSignedEnvelope protowire.Number = 1
	fieldSignedTxHash   protowire.Number = 2
	fieldSignedSigner   protowire.Number = 3
)

// proto3 规则：默认值不写入
func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// 嵌套消息总是写出
func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// fieldReader 只接受规范编码：字段号严格递增、不出现默认值、varint 最短编码
type fieldReader struct {
	buf  []byte
	last protowire.Number
}

func newFieldReader(b []byte) *fieldReader {
	return &fieldReader{buf: b}
}

func (r *fieldReader) next() (protowire.Number, protowire.Type, bool, error) {
	if len(r.buf) == 0 {
		return 0, 0, false, nil
	}
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		return 0, 0, false, malformed("tag: %v", protowire.ParseError(n))
	}
	if num <= r.last {
		return 0, 0, false, malformed("field %d out of order or repeated", num)
	}
	r.last = num
	r.buf = r.buf[n:]
	return num, typ, true, nil
}

func (r *fieldReader) varint(num protowire.Number, typ protowire.Type) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, malformed("field %d: wire type %d, want varint", num, typ)
	}
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		return 0, malformed("field %d: %v", num, protowire.ParseError(n))
	}
	if n != protowire.SizeVarint(v) {
		return 0, malformed("field %d: non-minimal varint", num)
	}
	if v == 0 {
		return 0, malformed("field %d: default value encoded", num)
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *fieldReader) uint32(num protowire.Number, typ protowire.Type) (uint32, error) {
	v, err := r.varint(num, typ)
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		return 0, malformed("field %d: %d overflows uint32", num, v)
	}
	return uint32(v), nil
}

func (r *fieldReader) bytes(num protowire.Number, typ protowire.Type) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, malformed("field %d: wire type %d, want bytes", num, typ)
	}
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		return nil, malformed("field %d: %v", num, protowire.ParseError(n))
	}
	if len(v) == 0 {
		return nil, malformed("field %d: default value encoded", num)
	}
	r.buf = r.buf[n:]
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (r *fieldReader) string(num protowire.Number, typ protowire.Type) (string, error) {
	b, err := r.bytes(num, typ)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedTransaction, fmt.Sprintf(format, args...))
}

// isLowerHex 版本 0 的 to 字段是不带前缀的小写十六进制
func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
