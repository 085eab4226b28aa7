package request

// TxRequest 签名/发送交易
type TxRequest struct {
	To              string   `json:"to" binding:"omitempty,hexaddr"`
	Create          bool     `json:"create"`
	Data            string   `json:"data" binding:"omitempty,hexdata"`
	Function        string   `json:"function"`
	Args            []string `json:"args"`
	Quota           uint64   `json:"quota"`
	ValidUntilBlock uint64   `json:"valid_until_block"`
	Value           string   `json:"value"`
	ChainID         string   `json:"chain_id"`
	Version         *uint32  `json:"version" binding:"omitempty,oneof=0 1"`
	Nonce           string   `json:"nonce" binding:"max=128"`
}

// TxDecodeRequest 解码十六进制签名交易
type TxDecodeRequest struct {
	Tx string `json:"tx" binding:"required,hexdata"`
}

// CallRequest 只读调用
type CallRequest struct {
	To   string `json:"to" binding:"required,hexaddr"`
	Data string `json:"data" binding:"omitempty,hexdata"`
}
