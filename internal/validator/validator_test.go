package validator

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignup(t *testing.T) {
	ctx := context.Background()
	v := NewAuthValidator()

	assert.NoError(t, v.ValidateSignup(ctx, "budi", " budi@example.com ", "secret"))
	assert.ErrorIs(t, v.ValidateSignup(ctx, " ", "budi@example.com", "secret"), ErrSignupFieldsRequired)
	assert.ErrorIs(t, v.ValidateSignup(ctx, "budi", "", "secret"), ErrSignupFieldsRequired)
	assert.ErrorIs(t, v.ValidateSignup(ctx, "budi", "budi@example.com", ""), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateSignup(ctx, "budi", "budi", "secret"), ErrInvalidEmail)
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "budi", "secret"))
	assert.ErrorIs(t, v.ValidateLogin(ctx, "  ", "secret"), ErrCredentialsRequired)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "budi", ""), usecase.ErrValidation)
}

func TestValidateCheckout_Order(t *testing.T) {
	v := NewCheckoutValidator()
	ctx := context.Background()

	okForm := usecase.CheckoutForm{Name: "Budi", Address: "Jl. Merdeka 1", Email: "b@example.com"}
	okLines := []model.CartLine{{ProductID: "1", Name: "Shoe", Price: 100, Qty: 1}}
	okUser := model.UserIdentity{Token: "t", Username: "budi"}

	cases := []struct {
		name  string
		form  usecase.CheckoutForm
		lines []model.CartLine
		user  model.UserIdentity
		want  error
	}{
		{"ok", okForm, okLines, okUser, nil},
		{"name first", usecase.CheckoutForm{}, nil, model.UserIdentity{}, ErrNameRequired},
		{"address", usecase.CheckoutForm{Name: "Budi"}, nil, model.UserIdentity{}, ErrAddressRequired},
		{"empty cart", okForm, nil, model.UserIdentity{}, ErrCartEmpty},
		{"login", okForm, okLines, model.UserIdentity{}, ErrLoginRequired},
		{"email", usecase.CheckoutForm{Name: "Budi", Address: "x", Email: "nope"}, okLines, okUser, ErrInvalidEmail},
		{"bad line", okForm, []model.CartLine{{ProductID: "1", Name: "", Price: 100, Qty: 1}}, okUser, ErrInvalidCartLine},
		{"zero price", okForm, []model.CartLine{{ProductID: "1", Name: "Shoe", Price: 0, Qty: 1}}, okUser, ErrInvalidCartLine},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateCheckout(ctx, tc.form, tc.lines, tc.user)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateCheckout_LoginIsUnauthorized(t *testing.T) {
	err := NewCheckoutValidator().ValidateCheckout(context.Background(),
		usecase.CheckoutForm{Name: "a", Address: "b"},
		[]model.CartLine{{Name: "x", Price: 1, Qty: 1}},
		model.UserIdentity{},
	)
	assert.True(t, errors.Is(err, usecase.ErrUnauthorized))
	assert.False(t, errors.Is(err, usecase.ErrValidation))
}
