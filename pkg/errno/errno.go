package errno

import (
	"errors"
	"fmt"
)

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Err 是携带上下文的 Errno: 出错字段 + 底层原因
// errors.Is(err, errno.ErrInvalidTransaction) 按 Code 匹配
type Err struct {
	Errno
	Field string
	Cause error
}

func (e *Err) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Err) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is 能同时匹配 Errno 值和 *Err
func (e *Err) Is(target error) bool {
	switch t := target.(type) {
	case Errno:
		return t.Code == e.Code
	case *Errno:
		return t != nil && t.Code == e.Code
	case *Err:
		return t != nil && t.Code == e.Code
	}
	return false
}

// New 构造带字段的错误, 例如 errno.New(errno.ErrInvalidTransaction, "gasLimit", "缺少 gasLimit")
func New(no Errno, field string, format string, args ...interface{}) *Err {
	var cause error
	if format != "" {
		cause = fmt.Errorf(format, args...)
	}
	return &Err{Errno: no, Field: field, Cause: cause}
}

// Wrap 用 Errno 包装底层错误
func Wrap(no Errno, cause error) *Err {
	return &Err{Errno: no, Cause: cause}
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var withCtx *Err
	if errors.As(err, &withCtx) {
		return withCtx.Code, withCtx.Error()
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Wallet Errors (30000+)
var (
	ErrUnsupportedField    = Errno{Code: 30001, Message: "unsupported field"}
	ErrInvalidTransaction  = Errno{Code: 30002, Message: "invalid transaction"}
	ErrProviderUnavailable = Errno{Code: 30003, Message: "provider unavailable"}
	ErrReceiptTimeout      = Errno{Code: 30004, Message: "receipt timeout"}
	ErrTransactionDropped  = Errno{Code: 30005, Message: "transaction dropped"}
	ErrNotFound            = Errno{Code: 30006, Message: "not found"}
	ErrNoSigner            = Errno{Code: 30007, Message: "wallet has no signing key"}
)
