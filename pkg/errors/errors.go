package errors

import (
	"errors"
	"fmt"
)

// ValidationError 数据层校验失败（权重总和、得分上限等），对应 HTTP 400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation 构造带格式化消息的校验错误
func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AsValidation 判断 err 链中是否包含 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
