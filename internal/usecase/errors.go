package usecase

import (
	"errors"
	"fmt"
)

// HTTPError はハンドラがそのままステータスとメッセージに使うエラー
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 未ログイン
	ErrUnauthorized = errors.New("unauthorized")
)
