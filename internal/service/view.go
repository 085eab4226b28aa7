package service

import (
	"encoding/hex"

	"cita-client/pkg/crypto"
	"cita-client/pkg/transaction"
)

// TxView 签名交易的可读形式 (HTTP 与 CLI 输出)
type TxView struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	Crypto          string `json:"crypto"`
	Signer          string `json:"signer"`
	To              string `json:"to,omitempty"`
	Create          bool   `json:"create"`
	Nonce           string `json:"nonce"`
	Quota           uint64 `json:"quota"`
	ValidUntilBlock uint64 `json:"valid_until_block"`
	Data            string `json:"data"`
	Value           string `json:"value"`
	ChainID         string `json:"chain_id"`
	Version         uint32 `json:"version"`
}

func NewTxView(s *transaction.SignedTransaction) *TxView {
	tx := s.Unverified.Transaction
	v := &TxView{
		Hash:            s.TxHash.Hex(),
		From:            crypto.FormatAddress(s.From),
		Crypto:          s.Unverified.Crypto.String(),
		Signer:          "0x" + hex.EncodeToString(s.Signer),
		Create:          tx.IsCreate(),
		Nonce:           tx.Nonce,
		Quota:           tx.Quota,
		ValidUntilBlock: tx.ValidUntilBlock,
		Data:            "0x" + hex.EncodeToString(tx.Data),
		Value:           "0",
		ChainID:         "0",
		Version:         tx.Version,
	}
	if tx.To != nil {
		v.To = crypto.FormatAddress(*tx.To)
	}
	if tx.Value != nil {
		v.Value = tx.Value.String()
	}
	if tx.ChainID != nil {
		v.ChainID = tx.ChainID.String()
	}
	return v
}
