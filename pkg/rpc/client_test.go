package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type handlerFunc func(params []json.RawMessage) (interface{}, *rpcError)

// fakeNode 最小化的 JSON-RPC 节点
type fakeNode struct {
	mu       sync.Mutex
	calls    map[string]int
	handlers map[string]handlerFunc
}

func newFakeNode() *fakeNode {
	return &fakeNode{calls: map[string]int{}, handlers: map[string]handlerFunc{}}
}

func (f *fakeNode) handle(method string, h handlerFunc) {
	f.handlers[method] = h
}

func (f *fakeNode) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.calls[req.Method]++
	h, ok := f.handlers[req.Method]
	f.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = rpcError{Code: -32601, Message: "method not found"}
	} else if result, rerr := h(req.Params); rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func dialFake(t *testing.T, node http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestBlockNumber(t *testing.T) {
	node := newFakeNode()
	node.handle("blockNumber", func([]json.RawMessage) (interface{}, *rpcError) { return "0x64", nil })
	c := dialFake(t, node)

	n, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), n)
}

func TestSendRawTransaction(t *testing.T) {
	node := newFakeNode()
	var got string
	node.handle("sendRawTransaction", func(params []json.RawMessage) (interface{}, *rpcError) {
		if assert.Len(t, params, 1) {
			assert.NoError(t, json.Unmarshal(params[0], &got))
		}
		return map[string]string{
			"hash":   "0x019abfa50cbb6df5b6dc41eabba47db4e7eb1787a96fd5836820d581287e0236",
			"status": "OK",
		}, nil
	})
	c := dialFake(t, node)

	resp, err := c.SendRawTransaction(context.Background(), "0x0a0b")
	require.NoError(t, err)
	assert.Equal(t, "0x0a0b", got)
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, common.HexToHash("0x019abfa50cbb6df5b6dc41eabba47db4e7eb1787a96fd5836820d581287e0236"), resp.Hash)
}

func TestCallContract(t *testing.T) {
	node := newFakeNode()
	node.handle("call", func(params []json.RawMessage) (interface{}, *rpcError) {
		if !assert.Len(t, params, 2) {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}
		}
		var req map[string]string
		assert.NoError(t, json.Unmarshal(params[0], &req))
		assert.Equal(t, "0x70a08231", req["data"])

		var height string
		assert.NoError(t, json.Unmarshal(params[1], &height))
		assert.Equal(t, HeightLatest, height)
		return "0x" + "00000000000000000000000000000000000000000000000000000000000000ff", nil
	})
	c := dialFake(t, node)

	out, err := c.CallContract(context.Background(), CallRequest{
		To:   common.HexToAddress("0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"),
		Data: []byte{0x70, 0xa0, 0x82, 0x31},
	}, "")
	require.NoError(t, err)
	require.Len(t, out, 32)
	assert.Equal(t, byte(0xff), out[31])
}

func TestNodeError(t *testing.T) {
	node := newFakeNode()
	node.handle("sendRawTransaction", func([]json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32006, Message: "InvalidNonce"}
	})
	c := dialFake(t, node)

	_, err := c.SendRawTransaction(context.Background(), "0x00")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNode)
	assert.NotErrorIs(t, err, ErrTransport)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindNode, rerr.Kind)
	assert.Equal(t, -32006, rerr.Code)
	assert.Equal(t, "sendRawTransaction", rerr.Method)
}

func TestTransportError(t *testing.T) {
	c := dialFake(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := c.BlockNumber(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, KindTransport, rerr.Kind)
}

func TestCanceledContext(t *testing.T) {
	node := newFakeNode()
	node.handle("blockNumber", func([]json.RawMessage) (interface{}, *rpcError) { return "0x1", nil })
	c := dialFake(t, node)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.BlockNumber(ctx)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestReceiptNotFound(t *testing.T) {
	node := newFakeNode()
	node.handle("getTransactionReceipt", func([]json.RawMessage) (interface{}, *rpcError) { return nil, nil })
	c := dialFake(t, node)

	_, err := c.GetTransactionReceipt(context.Background(), common.Hash{1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceipt(t *testing.T) {
	node := newFakeNode()
	node.handle("getTransactionReceipt", func([]json.RawMessage) (interface{}, *rpcError) {
		return map[string]interface{}{
			"transactionHash":     "0x019abfa50cbb6df5b6dc41eabba47db4e7eb1787a96fd5836820d581287e0236",
			"transactionIndex":    "0x0",
			"blockHash":           "0xe068cfe971bb4a6e5d0fbb1b24c64a6f3cd1dad3b2a5c5c8e1a1bd0bc0f0a6c7",
			"blockNumber":         "0x1a",
			"cumulativeQuotaUsed": "0x5208",
			"quotaUsed":           "0x5208",
			"contractAddress":     "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf",
			"logs":                []interface{}{},
			"root":                nil,
			"logsBloom":           "0x00",
			"errorMessage":        nil,
		}, nil
	})
	c := dialFake(t, node)

	r, err := c.GetTransactionReceipt(context.Background(), common.Hash{1})
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Equal(t, uint64(26), uint64(r.BlockNumber))
	assert.Equal(t, int64(21000), r.QuotaUsed.ToInt().Int64())
	require.NotNil(t, r.ContractAddress)
}

func TestMetaDataCached(t *testing.T) {
	node := newFakeNode()
	node.handle("getMetaData", func([]json.RawMessage) (interface{}, *rpcError) {
		return map[string]interface{}{
			"chainId":   1,
			"chainIdV1": "0x0000000000000000000000000000000000000000000000000000000000000001",
			"chainName": "test-chain",
			"version":   1,
		}, nil
	})
	c := dialFake(t, node)

	for i := 0; i < 3; i++ {
		m, err := c.GetMetaData(context.Background(), "0x10")
		require.NoError(t, err)
		assert.Equal(t, "test-chain", m.ChainName)

		id, err := m.ChainIDFor(m.Version)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id.Int64())
	}
	assert.Equal(t, 1, node.count("getMetaData"))
}

func TestGetBalanceAndPeerCount(t *testing.T) {
	node := newFakeNode()
	node.handle("getBalance", func([]json.RawMessage) (interface{}, *rpcError) { return "0xde0b6b3a7640000", nil })
	node.handle("peerCount", func([]json.RawMessage) (interface{}, *rpcError) { return "0x3", nil })
	c := dialFake(t, node)

	b, err := c.GetBalance(context.Background(), common.Address{}, "")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", b.String())

	n, err := c.PeerCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestUnexpectedResult(t *testing.T) {
	node := newFakeNode()
	node.handle("blockNumber", func([]json.RawMessage) (interface{}, *rpcError) { return "not-a-number", nil })
	c := dialFake(t, node)

	_, err := c.BlockNumber(context.Background())
	assert.ErrorIs(t, err, ErrNode)
}
