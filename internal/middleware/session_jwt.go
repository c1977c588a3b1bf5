package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey = "session_id" // string
	CtxUserKey      = "user"       // model.UserIdentity

	SessionCookieName = "sf_session"
	sessionTTL        = 30 * 24 * time.Hour
)

type SessionConfig struct {
	Secret string
	Secure bool
}

// SessionCookie は署名付きcookieからセッションIDを取り出す。
// cookieが無い・壊れている・期限切れなら新しいセッションを発行する。
func SessionCookie(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				sid, _ = ParseSessionToken(cfg.Secret, ck.Value)
			}

			if sid == "" {
				sid = uuid.NewString()
				token, err := IssueSessionToken(cfg.Secret, sid, time.Now())
				if err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("session error"))
				}
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(sessionTTL / time.Second),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			//contextへ保存
			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

// IssueSessionToken は HS256 で sid を署名する
func IssueSessionToken(secret, sid string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSessionToken は検証に通れば sid を返す
func ParseSessionToken(secret, raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sid, err := parseString(claims["sid"])
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(sid); err != nil {
		return "", errors.New("invalid sid")
	}
	return sid, nil
}

// SessionID はハンドラ用
func SessionID(c echo.Context) string {
	sid, _ := c.Get(CtxSessionIDKey).(string)
	return sid
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.New("invalid string")
	}
	return s, nil
}
