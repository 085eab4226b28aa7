package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
	"cita-client/pkg/keypair"
	"cita-client/pkg/rpc"
	"cita-client/pkg/transaction"
	"cita-client/pkg/txbuilder"
)

const tokenABI = `[
	{"type":"constructor","inputs":[{"name":"supply","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

const tokenAddr = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"

type fakeBackend struct {
	lastCall rpc.CallRequest
	callOut  []byte
	sent     []string
	sendErr  error
}

func (f *fakeBackend) CallContract(_ context.Context, req rpc.CallRequest, height string) ([]byte, error) {
	f.lastCall = req
	return f.callOut, nil
}

func (f *fakeBackend) SendRawTransaction(_ context.Context, signedHex string) (*rpc.TxResponse, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, signedHex)
	return &rpc.TxResponse{Status: "OK"}, nil
}

func newBuilder(t *testing.T) *txbuilder.Builder {
	t.Helper()
	b, err := txbuilder.New(nil)
	require.NoError(t, err)
	return b
}

func txOpts() []txbuilder.Option {
	return []txbuilder.Option{
		txbuilder.WithQuota(100000),
		txbuilder.WithChainID(big.NewInt(1)),
		txbuilder.WithValidUntilBlock(100),
	}
}

func TestCall(t *testing.T) {
	backend := &fakeBackend{callOut: common.LeftPadBytes([]byte{0x2a}, 32)}
	c, err := New(backend, tokenAddr, []byte(tokenABI), nil)
	require.NoError(t, err)

	values, err := c.Call(context.Background(), "balanceOf", tokenAddr)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "42", values[0].String())

	assert.Equal(t, c.Address(), backend.lastCall.To)
	sel := abi.Selector("balanceOf(address)")
	assert.Equal(t, sel[:], []byte(backend.lastCall.Data[:4]))
}

func TestPrepareCall(t *testing.T) {
	c, err := New(&fakeBackend{}, tokenAddr, []byte(tokenABI), nil)
	require.NoError(t, err)

	data, to, err := c.PrepareCall("transfer", []string{tokenAddr, "1"}, "")
	require.NoError(t, err)
	assert.Equal(t, c.Address(), to)
	want, err := abi.EncodeFunction("transfer(address,uint256)", []string{tokenAddr, "1"})
	require.NoError(t, err)
	assert.Equal(t, want, data)

	other := "0x0000000000000000000000000000000000000001"
	_, to, err = c.PrepareCall("transfer", []string{tokenAddr, "1"}, other)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(other), to)

	_, _, err = c.PrepareCall("transfer", []string{tokenAddr}, "")
	assert.ErrorIs(t, err, abi.ErrArity)
}

func TestSend(t *testing.T) {
	backend := &fakeBackend{}
	c, err := New(backend, tokenAddr, []byte(tokenABI), newBuilder(t))
	require.NoError(t, err)
	kp, err := keypair.Generate(crypto.Ed25519)
	require.NoError(t, err)

	res, err := c.Send(context.Background(), kp, "transfer", []string{tokenAddr, "5"}, txOpts()...)
	require.NoError(t, err)
	assert.Equal(t, "OK", res.Status)
	assert.Equal(t, kp.Address(), res.From)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, res.Hex, backend.sent[0])

	env, err := transaction.DecodeHex(backend.sent[0])
	require.NoError(t, err)
	require.NotNil(t, env.Transaction.To)
	assert.Equal(t, c.Address(), *env.Transaction.To)
}

func TestSendErrors(t *testing.T) {
	kp, err := keypair.Generate(crypto.Secp256k1)
	require.NoError(t, err)

	c, err := New(&fakeBackend{}, tokenAddr, []byte(tokenABI), nil)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), kp, "transfer", []string{tokenAddr, "5"}, txOpts()...)
	assert.Error(t, err)

	nodeErr := &rpc.Error{Method: "sendRawTransaction", Kind: rpc.KindNode, Code: -32006, Err: errors.New("dup")}
	backend := &fakeBackend{sendErr: nodeErr}
	c, err = New(backend, tokenAddr, []byte(tokenABI), newBuilder(t))
	require.NoError(t, err)
	_, err = c.Send(context.Background(), kp, "transfer", []string{tokenAddr, "5"}, txOpts()...)
	assert.ErrorIs(t, err, rpc.ErrNode)

	_, err = c.Send(context.Background(), kp, "transfer", []string{tokenAddr, "5"})
	assert.ErrorIs(t, err, txbuilder.ErrQuotaRequired)
}

func TestDeploy(t *testing.T) {
	backend := &fakeBackend{}
	kp, err := keypair.Generate(crypto.Secp256k1)
	require.NoError(t, err)

	code := []byte{0x60, 0x80, 0x60, 0x40}
	res, err := Deploy(context.Background(), backend, newBuilder(t), kp, []byte(tokenABI), code, []string{"1000"}, txOpts()...)
	require.NoError(t, err)
	assert.True(t, res.Envelope.Transaction.IsCreate())
	assert.Equal(t, code, res.Envelope.Transaction.Data[:len(code)])
}

func TestNewErrors(t *testing.T) {
	_, err := New(&fakeBackend{}, "0x12", []byte(tokenABI), nil)
	assert.ErrorIs(t, err, crypto.ErrInvalidAddress)

	_, err = New(&fakeBackend{}, tokenAddr, []byte("{"), nil)
	assert.ErrorIs(t, err, abi.ErrInvalidInterface)
}
