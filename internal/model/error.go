package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternalServer  = errors.New("internal server error")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("resource conflict")
	ErrNotEligible     = errors.New("certificate not eligible")
	ErrAlreadyReviewed = errors.New("course already reviewed")
)

// ErrorDetail はクライアントに返すエラー情報です。
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はエラーレスポンスのボディです。
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はアプリケーション層のエラーです。
// Err にセンチネルエラーを保持し、errors.Is での判定を可能にします。
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{Code: code, Message: message, Field: field},
		Err:    err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Detail.Code, e.Detail.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Detail.Code, e.Detail.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Internal は DB エラーなどを ErrInternalServer として判定できるようにラップします。
func Internal(err error) error {
	if err == nil {
		return ErrInternalServer
	}
	return fmt.Errorf("%w: %w", ErrInternalServer, err)
}
