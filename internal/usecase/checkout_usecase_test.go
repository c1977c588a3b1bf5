package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/backend"
	"storefront/internal/domain/model"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CheckoutUsecaseSuite struct {
	suite.Suite
	ctx      context.Context
	be       *MockBackend
	states   *memoryStates
	cart     *usecase.CartUsecase
	auth     *usecase.AuthUsecase
	checkout *usecase.CheckoutUsecase
}

func TestCheckoutUsecaseSuite(t *testing.T) {
	suite.Run(t, new(CheckoutUsecaseSuite))
}

func (s *CheckoutUsecaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.be = new(MockBackend)
	s.states = newMemoryStates()

	r := newRegistry(s.T(), s.states, s.be, 8)
	s.cart = usecase.NewCartUsecase(r, s.be, nil, nil)
	s.auth = usecase.NewAuthUsecase(r, s.be, validator.NewAuthValidator(), nil)
	s.checkout = usecase.NewCheckoutUsecase(r, s.be, validator.NewCheckoutValidator(), nil, nil)

	s.be.On("GetProduct", mock.Anything, "p1").Return(model.Product{ID: "p1", Name: "Shoe", Price: 100}, nil).Maybe()
}

func (s *CheckoutUsecaseSuite) login() {
	s.be.On("Login", mock.Anything, "budi", "secret").
		Return(model.UserIdentity{Token: "tok", Username: "budi", UserID: "u1", Role: model.RoleUser, Email: "b@example.com"}, nil).Once()
	_, err := s.auth.Login(s.ctx, "s1", "budi", "secret")
	s.Require().NoError(err)
}

func (s *CheckoutUsecaseSuite) addShoe(qty int64) {
	_, err := s.cart.AddToCart(s.ctx, "s1", usecase.AddCartInput{ProductID: "p1", Quantity: qty})
	s.Require().NoError(err)
}

func (s *CheckoutUsecaseSuite) requireStatus(err error, status int) *usecase.HTTPError {
	he, ok := usecase.AsHTTPError(err)
	s.Require().True(ok, "expected HTTPError, got %v", err)
	s.Equal(status, he.Status)
	return he
}

func (s *CheckoutUsecaseSuite) TestRedirectClearsCart() {
	s.login()
	s.addShoe(3)

	want := backend.CheckoutRequest{
		Items:    []backend.CheckoutItem{{Name: "Shoe", Price: 100, Qty: 3}},
		Address:  "Jl. Merdeka 1",
		Email:    "b@example.com",
		Phone:    "0812",
		Username: "budi",
		Total:    300,
	}
	s.be.On("Checkout", mock.Anything, "tok", want).
		Return(backend.CheckoutResult{RedirectURL: "https://pay/1"}, nil).Once()

	res, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Address: " Jl. Merdeka 1 ", Phone: "0812"})
	s.Require().NoError(err)
	s.Equal("https://pay/1", res.RedirectURL)
	s.True(res.Success)
	s.Equal(int64(300), res.Total)

	cart, err := s.cart.GetCart(s.ctx, "s1")
	s.Require().NoError(err)
	s.Empty(cart.Items)
	s.be.AssertExpectations(s.T())
}

func (s *CheckoutUsecaseSuite) TestSuccessWithoutURL() {
	s.login()
	s.addShoe(1)
	s.be.On("Checkout", mock.Anything, "tok", mock.Anything).Return(backend.CheckoutResult{Success: true}, nil).Once()

	res, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Address: "x"})
	s.Require().NoError(err)
	s.Empty(res.RedirectURL)
	s.True(res.Success)
}

func (s *CheckoutUsecaseSuite) TestValidationOrder() {
	_, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{})
	he := s.requireStatus(err, http.StatusBadRequest)
	s.Equal("name is required", he.Message)

	_, err = s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Name: "Budi"})
	he = s.requireStatus(err, http.StatusBadRequest)
	s.Equal("address is required", he.Message)

	_, err = s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Name: "Budi", Address: "x"})
	he = s.requireStatus(err, http.StatusBadRequest)
	s.Equal("cart is empty", he.Message)

	s.addShoe(1)
	_, err = s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Name: "Budi", Address: "x"})
	s.requireStatus(err, http.StatusUnauthorized)

	s.be.AssertNotCalled(s.T(), "Checkout", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CheckoutUsecaseSuite) TestSessionExpiredKeepsCart() {
	s.login()
	s.addShoe(2)
	s.be.On("Checkout", mock.Anything, "tok", mock.Anything).
		Return(backend.CheckoutResult{}, &backend.APIError{Status: http.StatusUnauthorized, Message: "jwt expired"}).Once()

	_, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Address: "x"})
	he := s.requireStatus(err, http.StatusUnauthorized)
	s.Equal("session expired", he.Message)

	cart, err := s.cart.GetCart(s.ctx, "s1")
	s.Require().NoError(err)
	s.Len(cart.Items, 1)
}

func (s *CheckoutUsecaseSuite) TestBackendMessage() {
	s.login()
	s.addShoe(1)
	s.be.On("Checkout", mock.Anything, "tok", mock.Anything).
		Return(backend.CheckoutResult{}, &backend.APIError{Status: http.StatusUnprocessableEntity, Message: "stock not enough"}).Once()

	_, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Address: "x"})
	he := s.requireStatus(err, http.StatusUnprocessableEntity)
	s.Equal("stock not enough", he.Message)
}

func (s *CheckoutUsecaseSuite) TestNoPaymentURL() {
	s.login()
	s.addShoe(1)
	s.be.On("Checkout", mock.Anything, "tok", mock.Anything).Return(backend.CheckoutResult{}, backend.ErrNoPaymentURL).Once()

	_, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Address: "x"})
	s.requireStatus(err, http.StatusBadGateway)

	cart, err := s.cart.GetCart(s.ctx, "s1")
	s.Require().NoError(err)
	s.Len(cart.Items, 1)
}

func (s *CheckoutUsecaseSuite) TestTransportError() {
	s.login()
	s.addShoe(1)
	s.be.On("Checkout", mock.Anything, "tok", mock.Anything).Return(backend.CheckoutResult{}, errors.New("timeout")).Once()

	_, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Address: "x"})
	s.requireStatus(err, http.StatusBadGateway)
}

func TestCheckoutUsecase_NoSession(t *testing.T) {
	r := newRegistry(t, nil, nil, 1)
	uc := usecase.NewCheckoutUsecase(r, new(MockBackend), validator.NewCheckoutValidator(), nil, nil)

	_, err := uc.Checkout(context.Background(), "", usecase.CheckoutForm{})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
}

func (s *CheckoutUsecaseSuite) TestCartUsableWhileCheckoutInFlight() {
	s.login()
	s.addShoe(1)

	started := make(chan struct{})
	release := make(chan struct{})
	s.be.On("Checkout", mock.Anything, "tok", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(backend.CheckoutResult{RedirectURL: "https://pay.example.com/1"}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := s.checkout.Checkout(s.ctx, "s1", usecase.CheckoutForm{Address: "x"})
		done <- err
	}()
	<-started

	// 決済APIの応答待ちでもカートは読める・閉じられる
	finishesQuickly(s.T(), "cart drawer", func() {
		_, err := s.cart.SetDrawer(s.ctx, "s1", false, "/")
		assert.NoError(s.T(), err)
	})

	close(release)
	s.Require().NoError(<-done)

	res, err := s.cart.GetCart(s.ctx, "s1")
	s.Require().NoError(err)
	s.Empty(res.Items)
}
