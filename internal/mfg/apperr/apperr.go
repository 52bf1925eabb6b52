// Package apperr 领域错误分类，供 handler 层映射 HTTP 状态码
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidReference  Code = "INVALID_REFERENCE"
	CodeInvalidQuantity   Code = "INVALID_QUANTITY"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeCyclicBOM         Code = "CYCLIC_BOM"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
)

// Error 带分类的领域错误
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(CodeNotFound, format, args...)
}

func InvalidReference(format string, args ...interface{}) *Error {
	return newf(CodeInvalidReference, format, args...)
}

func InvalidQuantity(format string, args ...interface{}) *Error {
	return newf(CodeInvalidQuantity, format, args...)
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return newf(CodeInsufficientStock, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newf(CodeInvalidTransition, format, args...)
}

func CyclicBOM(format string, args ...interface{}) *Error {
	return newf(CodeCyclicBOM, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(CodeConflict, format, args...)
}

// Internal 包装未预期的存储层错误
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf 提取错误分类，非领域错误归为 INTERNAL
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is 判断错误是否属于指定分类
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
