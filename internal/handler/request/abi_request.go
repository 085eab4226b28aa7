package request

// AbiEncodeRequest 三选一：abi+method / signature / types
type AbiEncodeRequest struct {
	ABI       string   `json:"abi"`
	Method    string   `json:"method"`
	Signature string   `json:"signature"` // transfer(address,uint256)
	Types     []string `json:"types"`
	Args      []string `json:"args"`
}

// AbiDecodeRequest abi+method 解码返回值，或按 types 解码
type AbiDecodeRequest struct {
	ABI    string   `json:"abi"`
	Method string   `json:"method"`
	Types  []string `json:"types"`
	Data   string   `json:"data" binding:"required,hexdata"`
}
