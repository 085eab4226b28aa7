package txbuilder

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
	"cita-client/pkg/transaction"
)

const testTo = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"

type fakeHeights struct {
	height uint64
	err    error
	calls  atomic.Int32
}

func (f *fakeHeights) BlockNumber(ctx context.Context) (uint64, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return f.height, f.err
}

func baseOptions(t *testing.T, extra ...Option) Options {
	t.Helper()
	opts := append([]Option{
		WithTo(testTo),
		WithFunction("transfer(address,uint256)", []string{testTo, "10"}),
		WithQuota(1000000),
		WithChainID(big.NewInt(1)),
	}, extra...)
	o, err := NewOptions(opts...)
	require.NoError(t, err)
	return o
}

func TestBuildUnsignedUsesWindow(t *testing.T) {
	heights := &fakeHeights{height: 100}
	b, err := New(heights)
	require.NoError(t, err)

	tx, err := b.BuildUnsigned(context.Background(), baseOptions(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(100+DefaultValidWindow), tx.ValidUntilBlock)
	assert.NotEmpty(t, tx.Nonce)
	assert.Equal(t, int32(1), heights.calls.Load())

	b, err = New(heights, WithValidWindow(MaxValidWindow))
	require.NoError(t, err)
	tx, err = b.BuildUnsigned(context.Background(), baseOptions(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(200), tx.ValidUntilBlock)
}

func TestExplicitValidUntilBlockSkipsLookup(t *testing.T) {
	heights := &fakeHeights{err: errors.New("must not be called")}
	b, err := New(heights)
	require.NoError(t, err)

	tx, err := b.BuildUnsigned(context.Background(), baseOptions(t, WithValidUntilBlock(999)))
	require.NoError(t, err)
	assert.Equal(t, uint64(999), tx.ValidUntilBlock)
	assert.Equal(t, int32(0), heights.calls.Load())
}

func TestHeightErrorReturnedUnchanged(t *testing.T) {
	lookupErr := errors.New("node unreachable")
	b, err := New(&fakeHeights{err: lookupErr})
	require.NoError(t, err)

	kp, err := keypair.Generate(crypto.Secp256k1)
	require.NoError(t, err)

	res, err := b.BuildAndSign(context.Background(), baseOptions(t), kp)
	assert.Nil(t, res)
	assert.Same(t, lookupErr, err)

	b, err = New(nil)
	require.NoError(t, err)
	_, err = b.BuildUnsigned(context.Background(), baseOptions(t))
	assert.ErrorIs(t, err, ErrNoHeightSource)
}

func TestCanceledBeforeSigning(t *testing.T) {
	b, err := New(&fakeHeights{height: 1})
	require.NoError(t, err)
	kp, err := keypair.Generate(crypto.Ed25519)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := b.BuildAndSign(ctx, baseOptions(t), kp)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)

	// 显式截止块高时不查询节点，但仍在签名前检查取消
	res, err = b.BuildAndSign(ctx, baseOptions(t, WithValidUntilBlock(10)), kp)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidWindowBounds(t *testing.T) {
	_, err := New(nil, WithValidWindow(0))
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = New(nil, WithValidWindow(MaxValidWindow+1))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	b, err := New(nil, WithValidWindow(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), b.Window())
}

func TestBuildAndSignBothFamilies(t *testing.T) {
	for _, f := range []crypto.Family{crypto.Secp256k1, crypto.Ed25519} {
		for _, version := range []uint32{0, 1} {
			t.Run(f.Name(), func(t *testing.T) {
				b, err := New(&fakeHeights{height: 50})
				require.NoError(t, err)
				kp, err := keypair.Generate(f)
				require.NoError(t, err)

				res, err := b.BuildAndSign(context.Background(), baseOptions(t, WithVersion(version), WithValue("1000")), kp)
				require.NoError(t, err)
				assert.Equal(t, kp.Address(), res.From)
				assert.True(t, strings.HasPrefix(res.Hex, "0x"))

				decoded, err := transaction.DecodeHex(res.Hex)
				require.NoError(t, err)
				signed, err := decoded.Verify()
				require.NoError(t, err)
				assert.Equal(t, res.TxHash, signed.TxHash)
				assert.Equal(t, kp.Address(), signed.From)
				assert.Equal(t, f.Crypto(), decoded.Crypto)
				assert.Equal(t, uint64(50+DefaultValidWindow), decoded.Transaction.ValidUntilBlock)
				assert.Equal(t, int64(1000), decoded.Transaction.Value.Int64())
				assert.Equal(t, version, decoded.Transaction.Version)
			})
		}
	}
}

func TestDeterministicOutput(t *testing.T) {
	for _, f := range []crypto.Family{crypto.Secp256k1, crypto.Ed25519} {
		kp, err := keypair.Generate(f)
		require.NoError(t, err)
		b, err := New(nil)
		require.NoError(t, err)

		o := baseOptions(t, WithNonce("fixed"), WithValidUntilBlock(77))
		first, err := b.BuildAndSign(context.Background(), o, kp)
		require.NoError(t, err)
		second, err := b.BuildAndSign(context.Background(), o, kp)
		require.NoError(t, err)
		assert.Equal(t, first.Raw, second.Raw, f.Name())
		assert.Equal(t, first.TxHash, second.TxHash)
	}
}

func TestGeneratedNonceIsUnique(t *testing.T) {
	b, err := New(&fakeHeights{height: 1})
	require.NoError(t, err)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		tx, err := b.BuildUnsigned(context.Background(), baseOptions(t))
		require.NoError(t, err)
		assert.False(t, seen[tx.Nonce])
		seen[tx.Nonce] = true
	}

	b, err = New(&fakeHeights{height: 1}, WithNonceSource(func() string { return "n-1" }))
	require.NoError(t, err)
	tx, err := b.BuildUnsigned(context.Background(), baseOptions(t))
	require.NoError(t, err)
	assert.Equal(t, "n-1", tx.Nonce)
}

func TestContractCreation(t *testing.T) {
	iface, err := abi.ParseInterface([]byte(`[{"type":"constructor","inputs":[{"name":"n","type":"uint256"}]}]`))
	require.NoError(t, err)
	code, err := iface.EncodeConstructor([]byte{0x60, 0x80}, []string{"7"})
	require.NoError(t, err)

	o, err := NewOptions(WithCreate(code), WithQuota(10), WithChainID(big.NewInt(1)), WithValidUntilBlock(5))
	require.NoError(t, err)
	assert.True(t, o.IsCreate())

	b, err := New(nil)
	require.NoError(t, err)
	kp, err := keypair.Generate(crypto.Secp256k1)
	require.NoError(t, err)
	res, err := b.BuildAndSign(context.Background(), o, kp)
	require.NoError(t, err)
	assert.True(t, res.Envelope.Transaction.IsCreate())
	assert.Equal(t, code, res.Envelope.Transaction.Data)
}

func TestOptionsValidation(t *testing.T) {
	chain := WithChainID(big.NewInt(1))
	cases := []struct {
		name string
		opts []Option
		want error
	}{
		{"no target", []Option{WithQuota(1), chain}, ErrMissingTarget},
		{"create then to", []Option{WithCreate([]byte{0x60, 0x60}), WithTo(testTo), WithQuota(1), chain}, ErrConflictingTarget},
		{"to then create", []Option{WithTo(testTo), WithCreate([]byte{0x60, 0x60}), WithQuota(1), chain}, ErrConflictingTarget},
		{"empty deploy code", []Option{WithCreate(nil), WithQuota(1), chain}, ErrEmptyDeployCode},
		{"missing quota", []Option{WithTo(testTo), chain}, ErrQuotaRequired},
		{"missing chain id", []Option{WithTo(testTo), WithQuota(1)}, ErrChainIDRequired},
		{"bad address", []Option{WithTo("0x1234"), WithQuota(1), chain}, ErrInvalidOption},
		{"v0 chain id overflow", []Option{WithTo(testTo), WithQuota(1), WithChainID(new(big.Int).Lsh(big.NewInt(1), 32))}, transaction.ErrInvalidChainID},
		{"negative value", []Option{WithTo(testTo), WithQuota(1), chain, WithValue("-1")}, transaction.ErrInvalidValue},
		{"fractional value", []Option{WithTo(testTo), WithQuota(1), chain, WithValue("1.5")}, ErrInvalidOption},
		{"arity", []Option{WithTo(testTo), WithQuota(1), chain, WithFunction("transfer(address,uint256)", []string{testTo})}, abi.ErrArity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewOptions(c.opts...)
			assert.ErrorIs(t, err, c.want)
		})
	}

	// v1 的 chain id 可以超过 uint32
	_, err := NewOptions(WithTo(testTo), WithQuota(1), WithVersion(1), WithChainID(new(big.Int).Lsh(big.NewInt(1), 32)))
	assert.NoError(t, err)
}

func TestOptionsImmutable(t *testing.T) {
	data := []byte{1, 2, 3}
	o, err := NewOptions(WithTo(testTo), WithData(data), WithQuota(1), WithChainID(big.NewInt(1)))
	require.NoError(t, err)

	data[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, o.Data())

	got := o.Data()
	got[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, o.Data())

	derived, err := o.With(WithQuota(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), o.Quota())
	assert.Equal(t, uint64(2), derived.Quota())
}

func TestParseValue(t *testing.T) {
	cases := map[string]string{
		"":                    "0",
		"0":                   "0",
		"1000000000000000000": "1000000000000000000",
		"0xde0b6b3a7640000":   "1000000000000000000",
		"0XFF":                "255",
		"1e18":                "1000000000000000000",
	}
	for in, want := range cases {
		v, err := ParseValue(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v.String(), in)
	}

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256).String()
	_, err := ParseValue(tooBig)
	assert.ErrorIs(t, err, transaction.ErrInvalidValue)

	_, err = ParseValue("0xzz")
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = ParseValue("abc")
	assert.ErrorIs(t, err, ErrInvalidOption)
}
