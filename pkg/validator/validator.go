package validator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cita-client/pkg/crypto"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Init 在 gin 的 binding 引擎上注册自定义校验：
//
//	hexaddr   20 字节地址，0x 可选
//	hexdata   十六进制字节串，0x 可选
//	algorithm secp256k1 / ed25519
func Init() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate = v
			register(v)
		}
	})
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("hexaddr", func(fl validator.FieldLevel) bool {
		_, err := crypto.ParseAddress(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("hexdata", func(fl validator.FieldLevel) bool {
		_, err := crypto.DecodeHex(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
		_, err := crypto.FamilyByName(fl.Field().String())
		return err == nil
	})
}

// Struct 按 binding 标签校验任意结构体 (CLI 等非 gin 场景)
func Struct(s any) error {
	Init()
	if validate == nil {
		validate = validator.New()
		validate.SetTagName("binding")
		register(validate)
	}
	return validate.Struct(s)
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			param := e.Param()

			switch tag {
			case "required":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
			case "min":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 至少为 %s", field, param))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能超过 %s", field, param))
			case "oneof":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 [%s] 之一", field, param))
			case "hexaddr":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是合法的 20 字节地址", field))
			case "hexdata":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是合法的十六进制数据", field))
			case "algorithm":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 secp256k1 或 ed25519", field))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, tag))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "请求参数错误"
}
