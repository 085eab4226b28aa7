package rpc

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"cita-client/pkg/transaction"
)

// TxResponse sendRawTransaction 的返回
type TxResponse struct {
	Hash   common.Hash `json:"hash"`
	Status string      `json:"status"`
}

// CallRequest call 方法的第一个参数
type CallRequest struct {
	From *common.Address `json:"from,omitempty"`
	To   common.Address  `json:"to"`
	Data hexutil.Bytes   `json:"data,omitempty"`
}

// Log 回执中的事件日志
type Log struct {
	Address             common.Address `json:"address"`
	Topics              []common.Hash  `json:"topics"`
	Data                hexutil.Bytes  `json:"data"`
	BlockHash           common.Hash    `json:"blockHash"`
	BlockNumber         hexutil.Uint64 `json:"blockNumber"`
	TransactionHash     common.Hash    `json:"transactionHash"`
	TransactionIndex    hexutil.Uint64 `json:"transactionIndex"`
	LogIndex            hexutil.Uint64 `json:"logIndex"`
	TransactionLogIndex hexutil.Uint64 `json:"transactionLogIndex"`
}

// Receipt 交易回执
type Receipt struct {
	TransactionHash     common.Hash     `json:"transactionHash"`
	TransactionIndex    hexutil.Uint64  `json:"transactionIndex"`
	BlockHash           common.Hash     `json:"blockHash"`
	BlockNumber         hexutil.Uint64  `json:"blockNumber"`
	CumulativeQuotaUsed hexutil.Big     `json:"cumulativeQuotaUsed"`
	QuotaUsed           hexutil.Big     `json:"quotaUsed"`
	ContractAddress     *common.Address `json:"contractAddress"`
	Logs                []Log           `json:"logs"`
	Root                *common.Hash    `json:"root"`
	LogsBloom           hexutil.Bytes   `json:"logsBloom"`
	ErrorMessage        *string         `json:"errorMessage"`
}

// Succeeded 没有错误信息即执行成功
func (r *Receipt) Succeeded() bool {
	return r.ErrorMessage == nil || *r.ErrorMessage == ""
}

// TransactionInfo getTransaction 的返回，Content 是信封的十六进制编码
type TransactionInfo struct {
	Hash        common.Hash    `json:"hash"`
	Content     string         `json:"content"`
	From        common.Address `json:"from"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	BlockHash   common.Hash    `json:"blockHash"`
	Index       hexutil.Uint64 `json:"index"`
}

// Envelope 解码 Content
func (t *TransactionInfo) Envelope() (*transaction.UnverifiedTransaction, error) {
	return transaction.DecodeHex(t.Content)
}

// MetaData 链元数据
type MetaData struct {
	ChainID          uint32           `json:"chainId"`
	ChainIDV1        string           `json:"chainIdV1"`
	ChainName        string           `json:"chainName"`
	Operator         string           `json:"operator"`
	Website          string           `json:"website"`
	GenesisTimestamp uint64           `json:"genesisTimestamp"`
	Validators       []common.Address `json:"validators"`
	BlockInterval    uint64           `json:"blockInterval"`
	TokenName        string           `json:"tokenName"`
	TokenSymbol      string           `json:"tokenSymbol"`
	TokenAvatar      string           `json:"tokenAvatar"`
	Version          uint32           `json:"version"`
	EconomicalModel  uint32           `json:"economicalModel"`
}

// ChainIDFor 按交易版本选择 chain id：版本 0 用 chainId，之后用 chainIdV1
func (m *MetaData) ChainIDFor(version uint32) (*big.Int, error) {
	if version < transaction.VersionV1 {
		return new(big.Int).SetUint64(uint64(m.ChainID)), nil
	}
	if m.ChainIDV1 == "" {
		return nil, fmt.Errorf("metadata has no chainIdV1")
	}
	id, err := hexutil.DecodeBig(normalizeQuantity(m.ChainIDV1))
	if err != nil {
		return nil, fmt.Errorf("invalid chainIdV1 %q: %w", m.ChainIDV1, err)
	}
	return id, nil
}

// normalizeQuantity 节点返回的 32 字节 chainIdV1 带前导零，hexutil 要求最短形式
func normalizeQuantity(s string) string {
	if len(s) < 2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		s = "0x" + s
	}
	digits := s[2:]
	i := 0
	for i < len(digits)-1 && digits[i] == '0' {
		i++
	}
	return "0x" + digits[i:]
}
