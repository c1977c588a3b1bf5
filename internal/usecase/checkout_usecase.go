package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain/model"
	"storefront/internal/format"

	"go.uber.org/zap"
)

// usecaseがValidatorInterfaceに依存する約束
type CheckoutValidator interface {
	ValidateCheckout(ctx context.Context, form CheckoutForm, lines []model.CartLine, user model.UserIdentity) error
}

// バックエンドの POST /checkout
type CheckoutGateway interface {
	Checkout(ctx context.Context, token string, req backend.CheckoutRequest) (backend.CheckoutResult, error)
}

// CheckoutForm はチェックアウト画面の入力（名前・メールは未入力ならログインユーザーの値）
type CheckoutForm struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type CheckoutResponse struct {
	RedirectURL string `json:"redirect_url,omitempty"`
	Success     bool   `json:"success"`
	Total       int64  `json:"total"`
	TotalLabel  string `json:"total_label"`
}

type CheckoutUsecase struct {
	sessions  *SessionRegistry
	gateway   CheckoutGateway
	validator CheckoutValidator
	prices    *format.PriceFormatter
	logger    *zap.Logger
}

// DI
func NewCheckoutUsecase(
	sessions *SessionRegistry,
	gateway CheckoutGateway,
	validator CheckoutValidator,
	prices *format.PriceFormatter,
	logger *zap.Logger,
) *CheckoutUsecase {
	if prices == nil {
		prices = format.NewPriceFormatter("id", format.DefaultSymbol)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutUsecase{
		sessions:  sessions,
		gateway:   gateway,
		validator: validator,
		prices:    prices,
		logger:    logger,
	}
}

// Checkout は入力検証→バックエンドへ注文→決済URL（または成功）ならカートを空にする
func (u *CheckoutUsecase) Checkout(ctx context.Context, sessionID string, form CheckoutForm) (CheckoutResponse, error) {
	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return CheckoutResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	// 同じセッションの注文は1つずつ。カート操作は待たせない
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	var (
		user  model.UserIdentity
		lines []model.CartLine
	)
	err = s.do(func() error {
		user = s.userLocked()
		form = withUserDefaults(form, user)
		lines = s.Cart.Lines()
		return u.validator.ValidateCheckout(ctx, form, lines, user)
	})
	if err != nil {
		return CheckoutResponse{}, toValidationHTTPError(err)
	}

	req := buildCheckoutRequest(form, lines)
	log := u.logger.With(zap.String("session_id", s.ID), zap.Int64("total", req.Total))

	result, err := u.gateway.Checkout(ctx, user.Token, req)
	if err != nil {
		return CheckoutResponse{}, u.checkoutError(log, err)
	}

	_ = s.do(func() error {
		s.Cart.ClearCart(ctx)
		s.Cart.CloseDrawer(ctx)
		return nil
	})
	log.Info("checkout completed", zap.Bool("redirect", result.RedirectURL != ""))

	return CheckoutResponse{
		RedirectURL: result.RedirectURL,
		Success:     true,
		Total:       req.Total,
		TotalLabel:  u.prices.Format(req.Total),
	}, nil
}

func (u *CheckoutUsecase) checkoutError(log *zap.Logger, err error) error {
	if errors.Is(err, backend.ErrNoPaymentURL) {
		log.Warn("checkout response without payment url")
		return NewHTTPError(http.StatusBadGateway, "payment url not found in response")
	}

	if ae, ok := backend.AsAPIError(err); ok {
		log.Warn("checkout rejected", zap.Int("status", ae.Status), zap.String("message", ae.Message))
		if ae.Status == http.StatusUnauthorized {
			return NewHTTPError(http.StatusUnauthorized, "session expired")
		}
		if ae.Status >= 400 && ae.Status < 500 {
			return NewHTTPError(ae.Status, ae.Message)
		}
		return NewHTTPError(http.StatusBadGateway, ae.Message)
	}

	log.Error("checkout request failed", zap.Error(err))
	return NewHTTPError(http.StatusBadGateway, "backend unavailable")
}

func withUserDefaults(form CheckoutForm, user model.UserIdentity) CheckoutForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Address = strings.TrimSpace(form.Address)

	if form.Name == "" {
		form.Name = user.Username
	}
	if form.Email == "" {
		form.Email = user.Email
	}
	return form
}

func buildCheckoutRequest(form CheckoutForm, lines []model.CartLine) backend.CheckoutRequest {
	items := make([]backend.CheckoutItem, 0, len(lines))
	var total int64
	for _, l := range lines {
		items = append(items, backend.CheckoutItem{Name: l.Name, Price: l.Price, Qty: l.Qty})
		total += l.Subtotal()
	}

	return backend.CheckoutRequest{
		Items:    items,
		Address:  form.Address,
		Email:    form.Email,
		Phone:    form.Phone,
		Username: form.Name,
		Total:    total,
	}
}

// validator のエラーを 400/401 に変換する
func toValidationHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, trimSentinel(err, ErrUnauthorized))
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, trimSentinel(err, ErrValidation))
	default:
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func trimSentinel(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
