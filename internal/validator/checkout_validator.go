package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

var (
	ErrNameRequired    = fmt.Errorf("%w: name is required", usecase.ErrValidation)
	ErrAddressRequired = fmt.Errorf("%w: address is required", usecase.ErrValidation)
	ErrCartEmpty       = fmt.Errorf("%w: cart is empty", usecase.ErrValidation)
	ErrInvalidEmail    = fmt.Errorf("%w: invalid email", usecase.ErrValidation)
	ErrInvalidCartLine = fmt.Errorf("%w: cart contains an invalid item", usecase.ErrValidation)

	// 未ログイン
	ErrLoginRequired = fmt.Errorf("%w: please log in first", usecase.ErrUnauthorized)
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type checkoutValidator struct{}

func NewCheckoutValidator() usecase.CheckoutValidator {
	return &checkoutValidator{}
}

// チェックの順番：名前 → 住所 → カート → ログイン → 各行
func (v *checkoutValidator) ValidateCheckout(ctx context.Context, form usecase.CheckoutForm, lines []model.CartLine, user model.UserIdentity) error {
	if strings.TrimSpace(form.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(form.Address) == "" {
		return ErrAddressRequired
	}
	if len(lines) == 0 {
		return ErrCartEmpty
	}
	if !user.LoggedIn() {
		return ErrLoginRequired
	}

	// メールは任意。入っていれば形式だけ見る
	if email := strings.TrimSpace(form.Email); email != "" && !isEmailLike(email) {
		return ErrInvalidEmail
	}

	for _, l := range lines {
		if strings.TrimSpace(l.Name) == "" || l.Price <= 0 || l.Qty < 1 {
			return ErrInvalidCartLine
		}
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
