package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hmy-wallet/pkg/address"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Init 在 gin 默认的 validator 上注册自定义规则:
//   - txhash: 0x 开头的 32 字节 hex
//   - address: one1 或 0x 地址
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register 注册自定义规则, 重复注册会覆盖
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("txhash", func(fl validator.FieldLevel) bool {
		return txHashPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		_, err := address.Parse(fl.Field().String())
		return err == nil
	})
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		if err != nil {
			return err.Error()
		}
		return "请求参数错误"
	}

	var errMsgs []string
	for _, e := range validationErrors {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 至少为 %s", field, param))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 不能超过 %s", field, param))
		case "oneof":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 [%s] 之一", field, param))
		case "numeric":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是数字", field))
		case "startswith":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 必须以 %s 开头", field, param))
		case "txhash":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 不是有效的交易哈希", field))
		case "address":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 不是有效的地址", field))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, e.Tag()))
		}
	}
	return strings.Join(errMsgs, "; ")
}
