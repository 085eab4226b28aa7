package handler

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"cita-client/internal/handler/request"
	"cita-client/internal/handler/response"
	"cita-client/pkg/abi"
	"cita-client/pkg/crypto"
	"cita-client/pkg/errno"
)

type AbiHandler struct{}

var Abi = &AbiHandler{}

// ValueView 解码结果中的一个值
type ValueView struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Encode 编码调用数据
// @Summary ABI 编码
// @Tags ABI
// @Accept json
// @Produce json
// @Param request body request.AbiEncodeRequest true "Encode Request"
// @Success 200 {object} response.Response
// @Router /api/v1/abi/encode [post]
func (h *AbiHandler) Encode(c *gin.Context) {
	var req request.AbiEncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	var (
		data []byte
		err  error
	)
	switch {
	case req.ABI != "" && req.Method != "":
		var iface *abi.Interface
		if iface, err = abi.ParseInterface([]byte(req.ABI)); err == nil {
			data, err = iface.EncodeInput(req.Method, req.Args)
		}
	case req.Signature != "":
		data, err = abi.EncodeFunction(req.Signature, req.Args)
	case req.Types != nil:
		data, err = abi.EncodeParams(req.Types, req.Args)
	default:
		err = errno.ErrInvalidParams
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"data": "0x" + hex.EncodeToString(data)})
}

// Decode 解码返回值
// @Summary ABI 解码
// @Tags ABI
// @Accept json
// @Produce json
// @Param request body request.AbiDecodeRequest true "Decode Request"
// @Success 200 {object} response.Response
// @Router /api/v1/abi/decode [post]
func (h *AbiHandler) Decode(c *gin.Context) {
	var req request.AbiDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	data, err := crypto.DecodeHex(req.Data)
	if err != nil {
		response.Error(c, errno.ErrInvalidParams)
		return
	}

	var values []abi.Value
	switch {
	case req.ABI != "" && req.Method != "":
		var iface *abi.Interface
		if iface, err = abi.ParseInterface([]byte(req.ABI)); err == nil {
			values, err = iface.DecodeOutput(req.Method, data)
		}
	case req.Types != nil:
		values, err = abi.DecodeParams(req.Types, data)
	default:
		err = errno.ErrInvalidParams
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"values": valueViews(values)})
}

func valueViews(values []abi.Value) []ValueView {
	out := make([]ValueView, 0, len(values))
	for _, v := range values {
		out = append(out, ValueView{Type: v.Type.String(), Value: v.String()})
	}
	return out
}
