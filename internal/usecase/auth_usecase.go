package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain/model"

	"go.uber.org/zap"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateLogin(ctx context.Context, identifier string, password string) error
	ValidateSignup(ctx context.Context, username, email, password string) error
}

// バックエンドの POST /login と POST /signup
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (model.UserIdentity, error)
	Signup(ctx context.Context, req backend.SignupRequest) error
}

// AuthUsecase はログイン状態（user-auth）の管理
type AuthUsecase struct {
	sessions  *SessionRegistry
	auth      Authenticator
	validator AuthValidator
	logger    *zap.Logger
}

// DI
func NewAuthUsecase(sessions *SessionRegistry, auth Authenticator, validator AuthValidator, logger *zap.Logger) *AuthUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthUsecase{
		sessions:  sessions,
		auth:      auth,
		validator: validator,
		logger:    logger,
	}
}

type MeResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
}

func toMeResponse(u model.UserIdentity) MeResponse {
	if !u.LoggedIn() {
		return MeResponse{}
	}
	return MeResponse{
		LoggedIn: true,
		Username: u.Username,
		UserID:   u.UserID,
		Role:     string(u.Role),
		Email:    u.Email,
	}
}

// Login はバックエンドで認証し、tokenとユーザー情報をセッションに保存する
func (u *AuthUsecase) Login(ctx context.Context, sessionID, identifier, password string) (MeResponse, error) {
	if err := u.validator.ValidateLogin(ctx, identifier, password); err != nil {
		return MeResponse{}, toValidationHTTPError(err)
	}

	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return MeResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	// 認証の通信はロックの外
	user, err := u.auth.Login(ctx, identifier, password)
	if err != nil {
		if ae, ok := backend.AsAPIError(err); ok {
			if ae.Status == http.StatusUnauthorized || ae.Status == http.StatusBadRequest {
				return MeResponse{}, NewHTTPError(http.StatusUnauthorized, ae.Message)
			}
			return MeResponse{}, NewHTTPError(http.StatusBadGateway, ae.Message)
		}
		u.logger.Error("login request failed", zap.Error(err))
		return MeResponse{}, NewHTTPError(http.StatusBadGateway, "backend unavailable")
	}
	if !user.LoggedIn() {
		return MeResponse{}, NewHTTPError(http.StatusBadGateway, "token missing in response")
	}

	_ = s.do(func() error {
		s.setUserLocked(ctx, user)
		return nil
	})
	return toMeResponse(user), nil
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup はバックエンドに登録を転送する。セッションのログイン状態は変えない。
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) error {
	if err := u.validator.ValidateSignup(ctx, in.Username, in.Email, in.Password); err != nil {
		return toValidationHTTPError(err)
	}

	err := u.auth.Signup(ctx, backend.SignupRequest{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
	if err == nil {
		return nil
	}

	// 重複などの 4xx はバックエンドのメッセージをそのまま返す
	if ae, ok := backend.AsAPIError(err); ok {
		u.logger.Warn("signup rejected", zap.Int("status", ae.Status), zap.String("message", ae.Message))
		if ae.Status >= 400 && ae.Status < 500 {
			return NewHTTPError(ae.Status, ae.Message)
		}
		return NewHTTPError(http.StatusBadGateway, ae.Message)
	}
	u.logger.Error("signup request failed", zap.Error(err))
	return NewHTTPError(http.StatusBadGateway, "backend unavailable")
}

// Logout は保存済みのログイン状態を消す（カートは残す）
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return NewHTTPError(http.StatusUnauthorized, "no session")
	}
	return s.do(func() error {
		s.clearUserLocked(ctx)
		return nil
	})
}

// Me は現在のログインユーザー（未ログインなら logged_in=false）
func (u *AuthUsecase) Me(ctx context.Context, sessionID string) (MeResponse, error) {
	user, err := u.CurrentUser(ctx, sessionID)
	if err != nil {
		return MeResponse{}, err
	}
	return toMeResponse(user), nil
}

// CurrentUser はミドルウェア（RequireUser）からも使う
func (u *AuthUsecase) CurrentUser(ctx context.Context, sessionID string) (model.UserIdentity, error) {
	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return model.UserIdentity{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	var user model.UserIdentity
	_ = s.do(func() error {
		user = s.userLocked()
		return nil
	})
	return user, nil
}
