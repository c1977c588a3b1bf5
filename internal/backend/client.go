// Package backend はショップのバックエンドREST APIのクライアント。
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain/model"

	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

// レスポンス本文の上限（全商品一覧でも十分な大きさ）
const MaxResponseBytes = 8 << 20

var ErrResponseTooLarge = errors.New("backend: response too large")

// APIError は 2xx 以外のレスポンス
type APIError struct {
	Status  int
	Message string
	Payload map[string]any
}

func (e *APIError) Error() string {
	return e.Message
}

func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}

// 決済URLも成功フラグも無いレスポンス
var ErrNoPaymentURL = errors.New("payment url not found in response")

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	maxBody int64
}

// NewClient は baseURL を正規化する（末尾の / を削り、/api が無ければ付ける）。
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: NormalizeBaseURL(baseURL),
		http:    httpClient,
		logger:  logger,
		maxBody: MaxResponseBytes,
	}
}

func NormalizeBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if strings.HasSuffix(base, "/api") {
		return base
	}
	return base + "/api"
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// FetchAllProducts は GET /items。配列以外は空として扱う。
func (c *Client) FetchAllProducts(ctx context.Context) ([]model.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/items", "", nil, &raw); err != nil {
		return nil, err
	}

	products := []model.Product{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return products, nil
	}
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// GetProduct は GET /items/{id}
func (c *Client) GetProduct(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(id), "", nil, &p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		MongoID  string `json:"_id"`
		Username string `json:"username"`
		Role     string `json:"role"`
		Email    string `json:"email"`
	} `json:"user"`
}

// Login は POST /login。identifier はユーザー名かメール。
func (c *Client) Login(ctx context.Context, identifier, password string) (model.UserIdentity, error) {
	var res loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", loginRequest{Identifier: identifier, Password: password}, &res); err != nil {
		return model.UserIdentity{}, err
	}

	id := res.User.ID
	if id == "" {
		id = res.User.MongoID
	}
	role := model.Role(res.User.Role)
	if role == "" {
		role = model.RoleUser
	}

	return model.UserIdentity{
		Token:    res.Token,
		Username: res.User.Username,
		UserID:   id,
		Role:     role,
		Email:    res.User.Email,
	}, nil
}

// SignupRequest は POST /signup の本文
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup は POST /signup。登録だけでログインはしない。
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.do(ctx, http.MethodPost, "/signup", "", req, nil)
}

type CheckoutItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int64  `json:"qty"`
}

// CheckoutRequest は POST /checkout の本文（連絡先は phone に統一）
type CheckoutRequest struct {
	Items    []CheckoutItem `json:"items"`
	Address  string         `json:"address"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Username string         `json:"username"`
	Total    int64          `json:"total"`
}

type CheckoutResult struct {
	RedirectURL string
	Success     bool
}

type invoiceRef struct {
	InvoiceURL string `json:"invoice_url"`
}

type checkoutResponse struct {
	PaymentURL  string      `json:"paymentUrl"`
	RedirectURL string      `json:"redirect_url"`
	Invoice     *invoiceRef `json:"invoice"`
	Data        *invoiceRef `json:"data"`
	URL         string      `json:"url"`
	Success     bool        `json:"success"`
}

// 決済URLは複数の形があり得るので最初に見つかったものを使う
func (r checkoutResponse) paymentURL() string {
	candidates := []string{r.PaymentURL, r.RedirectURL}
	if r.Invoice != nil {
		candidates = append(candidates, r.Invoice.InvoiceURL)
	}
	if r.Data != nil {
		candidates = append(candidates, r.Data.InvoiceURL)
	}
	candidates = append(candidates, r.URL)

	for _, u := range candidates {
		if strings.TrimSpace(u) != "" {
			return u
		}
	}
	return ""
}

// Checkout は POST /checkout（Bearer必須）
func (c *Client) Checkout(ctx context.Context, token string, req CheckoutRequest) (CheckoutResult, error) {
	var res checkoutResponse
	if err := c.do(ctx, http.MethodPost, "/checkout", token, req, &res); err != nil {
		return CheckoutResult{}, err
	}

	if u := res.paymentURL(); u != "" {
		return CheckoutResult{RedirectURL: u}, nil
	}
	if res.Success {
		return CheckoutResult{Success: true}, nil
	}
	return CheckoutResult{}, ErrNoPaymentURL
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		c.logger.Warn("backend response too large", zap.String("method", method), zap.String("path", path), zap.Int64("limit", c.maxBody))
		return fmt.Errorf("%s %s: %w", method, path, ErrResponseTooLarge)
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, data []byte) *APIError {
	e := &APIError{Status: status, Message: fmt.Sprintf("request failed: %d", status)}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return e
	}
	e.Payload = payload
	for _, key := range []string{"error", "message"} {
		if s, ok := payload[key].(string); ok && s != "" {
			e.Message = s
			break
		}
	}
	return e
}
