package handler

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"cita-client/internal/handler/request"
	"cita-client/internal/handler/response"
	"cita-client/internal/service"
	"cita-client/pkg/crypto"
	"cita-client/pkg/errno"
)

type TxHandler struct {
	svc *service.TxService
}

func NewTxHandler(svc *service.TxService) *TxHandler {
	return &TxHandler{svc: svc}
}

// Signer 当前签名地址
// @Summary 签名地址
// @Tags Tx
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/signer [get]
func (h *TxHandler) Signer(c *gin.Context) {
	response.Success(c, gin.H{
		"address":   crypto.FormatAddress(h.svc.Address()),
		"algorithm": h.svc.Algorithm(),
	})
}

// Sign 构建并签名，不提交
// @Summary 签名交易
// @Tags Tx
// @Accept json
// @Produce json
// @Param request body request.TxRequest true "Tx Request"
// @Success 200 {object} response.Response
// @Router /api/v1/tx/sign [post]
func (h *TxHandler) Sign(c *gin.Context) {
	intent, ok := bindIntent(c)
	if !ok {
		return
	}
	res, err := h.svc.Sign(c.Request.Context(), intent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"tx":   res.Hex,
		"hash": res.TxHash.Hex(),
		"from": crypto.FormatAddress(res.From),
	})
}

// Send 构建、签名并提交到节点
// @Summary 发送交易
// @Tags Tx
// @Accept json
// @Produce json
// @Param request body request.TxRequest true "Tx Request"
// @Success 200 {object} response.Response
// @Router /api/v1/tx/send [post]
func (h *TxHandler) Send(c *gin.Context) {
	intent, ok := bindIntent(c)
	if !ok {
		return
	}
	res, err := h.svc.Send(c.Request.Context(), intent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"hash":   res.TxHash.Hex(),
		"status": res.Status,
		"from":   crypto.FormatAddress(res.From),
	})
}

// Decode 解码并验签
// @Summary 解码交易
// @Tags Tx
// @Accept json
// @Produce json
// @Param request body request.TxDecodeRequest true "Decode Request"
// @Success 200 {object} response.Response
// @Router /api/v1/tx/decode [post]
func (h *TxHandler) Decode(c *gin.Context) {
	var req request.TxDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	view, err := service.DecodeTx(req.Tx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Receipt 查询交易回执
// @Summary 交易回执
// @Tags Tx
// @Produce json
// @Param hash path string true "Tx Hash"
// @Success 200 {object} response.Response
// @Router /api/v1/tx/{hash}/receipt [get]
func (h *TxHandler) Receipt(c *gin.Context) {
	receipt, err := h.svc.Receipt(c.Request.Context(), c.Param("hash"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, receipt)
}

// Call 只读调用
// @Summary 只读调用
// @Tags Tx
// @Accept json
// @Produce json
// @Param request body request.CallRequest true "Call Request"
// @Success 200 {object} response.Response
// @Router /api/v1/call [post]
func (h *TxHandler) Call(c *gin.Context) {
	var req request.CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	data, err := crypto.DecodeHex(req.Data)
	if err != nil {
		response.Error(c, errno.ErrInvalidParams)
		return
	}
	out, err := h.svc.Call(c.Request.Context(), req.To, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"output": "0x" + hex.EncodeToString(out)})
}

func bindIntent(c *gin.Context) (service.TxIntent, bool) {
	var req request.TxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return service.TxIntent{}, false
	}
	data, err := crypto.DecodeHex(req.Data)
	if err != nil {
		response.Error(c, errno.ErrInvalidParams)
		return service.TxIntent{}, false
	}
	return service.TxIntent{
		To:              req.To,
		Create:          req.Create,
		Data:            data,
		Function:        req.Function,
		Args:            req.Args,
		Quota:           req.Quota,
		ValidUntilBlock: req.ValidUntilBlock,
		Value:           req.Value,
		ChainID:         req.ChainID,
		Version:         req.Version,
		Nonce:           req.Nonce,
	}, true
}
