package validator

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/usecase"
)

var (
	// identifier か password が空
	ErrCredentialsRequired  = fmt.Errorf("%w: identifier and password are required", usecase.ErrValidation)
	// 登録に必要な項目が空
	ErrSignupFieldsRequired = fmt.Errorf("%w: username, email and password are required", usecase.ErrValidation)
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// ログインの入力を検証（identifier はユーザー名かメール）
func (v *authValidator) ValidateLogin(ctx context.Context, identifier string, password string) error {
	if strings.TrimSpace(identifier) == "" || password == "" {
		return ErrCredentialsRequired
	}
	return nil
}

// 新規登録の入力を検証（メール形式は注文時と同じ判定）
func (v *authValidator) ValidateSignup(ctx context.Context, username, email, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return ErrSignupFieldsRequired
	}
	if !isEmailLike(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}
