package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain/model"
	"storefront/internal/format"

	"go.uber.org/zap"
)

// 1件の商品取得（カタログに無い商品の追加・詳細表示で使う）
type ProductFetcher interface {
	GetProduct(ctx context.Context, id string) (model.Product, error)
}

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	sessions *SessionRegistry
	products ProductFetcher
	prices   *format.PriceFormatter
	logger   *zap.Logger
}

func NewCartUsecase(
	sessions *SessionRegistry,
	products ProductFetcher,
	prices *format.PriceFormatter,
	logger *zap.Logger,
) *CartUsecase {
	if prices == nil {
		prices = format.NewPriceFormatter("id", format.DefaultSymbol)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartUsecase{
		sessions: sessions,
		products: products,
		prices:   prices,
		logger:   logger,
	}
}

// CartLineResponse はカートの1行（index は更新・削除で使う位置）
type CartLineResponse struct {
	Index         int    `json:"index"`
	ProductID     string `json:"_id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	PriceLabel    string `json:"price_label"`
	ImgSrc        string `json:"imgSrc"`
	Qty           int64  `json:"qty"`
	Subtotal      int64  `json:"subtotal"`
	SubtotalLabel string `json:"subtotal_label"`
}

type CartResponse struct {
	Items      []CartLineResponse `json:"items"`
	Total      int64              `json:"total"`
	TotalLabel string             `json:"total_label"`
	ItemCount  int64              `json:"item_count"`
	IsOpen     bool               `json:"is_open"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

// GetCart はカート取得
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	s, err := u.session(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	var res CartResponse
	_ = s.do(func() error {
		res = u.buildCartResponse(s)
		return nil
	})
	return res, nil
}

// AddToCart はカートに追加（同一商品は数量加算、数量1未満は1として扱う）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s, err := u.session(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	// 商品の取得はロックの外
	p, err := u.lookupProduct(ctx, s, productID)
	if err != nil {
		return CartResponse{}, err
	}

	var res CartResponse
	_ = s.do(func() error {
		s.Cart.AddToCart(ctx, p, in.Quantity)
		res = u.buildCartResponse(s)
		return nil
	})
	return res, nil
}

// UpdateLine は数量変更（0以下は削除、範囲外は何もしない）
func (u *CartUsecase) UpdateLine(ctx context.Context, sessionID string, index int, qty int64) (CartResponse, error) {
	return u.mutate(ctx, sessionID, func(s *Session) {
		s.Cart.UpdateQuantity(ctx, index, qty)
	})
}

func (u *CartUsecase) RemoveLine(ctx context.Context, sessionID string, index int) (CartResponse, error) {
	return u.mutate(ctx, sessionID, func(s *Session) {
		s.Cart.RemoveItem(ctx, index)
	})
}

func (u *CartUsecase) RemoveProduct(ctx context.Context, sessionID, productID string) (CartResponse, error) {
	return u.mutate(ctx, sessionID, func(s *Session) {
		s.Cart.RemoveByProductID(ctx, productID)
	})
}

func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	return u.mutate(ctx, sessionID, func(s *Session) {
		s.Cart.ClearCart(ctx)
	})
}

// SetDrawer はドロワーの開閉（path がログイン画面なら開かない）
func (u *CartUsecase) SetDrawer(ctx context.Context, sessionID string, open bool, path string) (CartResponse, error) {
	return u.mutate(ctx, sessionID, func(s *Session) {
		if open {
			s.Cart.OpenDrawer(ctx, path)
			return
		}
		s.Cart.CloseDrawer(ctx)
	})
}

func (u *CartUsecase) mutate(ctx context.Context, sessionID string, fn func(s *Session)) (CartResponse, error) {
	s, err := u.session(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	var res CartResponse
	_ = s.do(func() error {
		fn(s)
		res = u.buildCartResponse(s)
		return nil
	})
	return res, nil
}

func (u *CartUsecase) session(ctx context.Context, sessionID string) (*Session, error) {
	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	return s, nil
}

// ストア画面で読み込み済みならそれを使い、無ければバックエンドから1件取る
func (u *CartUsecase) lookupProduct(ctx context.Context, s *Session, id string) (model.Product, error) {
	if p, ok := s.Catalog.Find(id); ok {
		return p, nil
	}
	return fetchProduct(ctx, u.products, u.logger, id)
}

func (u *CartUsecase) buildCartResponse(s *Session) CartResponse {
	st := s.Cart.Snapshot()

	items := make([]CartLineResponse, 0, len(st.Lines))
	for i, l := range st.Lines {
		items = append(items, CartLineResponse{
			Index:         i,
			ProductID:     l.ProductID,
			Name:          l.Name,
			Price:         l.Price,
			PriceLabel:    u.prices.Format(l.Price),
			ImgSrc:        l.ImgSrc,
			Qty:           l.Qty,
			Subtotal:      l.Subtotal(),
			SubtotalLabel: u.prices.Format(l.Subtotal()),
		})
	}

	total := st.Total()
	return CartResponse{
		Items:      items,
		Total:      total,
		TotalLabel: u.prices.Format(total),
		ItemCount:  st.ItemCount(),
		IsOpen:     st.IsOpen,
	}
}

// バックエンドのエラーを HTTPError に変換する
func fetchProduct(ctx context.Context, products ProductFetcher, logger *zap.Logger, id string) (model.Product, error) {
	if products == nil {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	p, err := products.GetProduct(ctx, id)
	if err == nil {
		return p, nil
	}
	if ae, ok := backend.AsAPIError(err); ok && ae.Status == http.StatusNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	logger.Warn("get product failed", zap.String("product_id", id), zap.Error(err))
	return model.Product{}, NewHTTPError(http.StatusBadGateway, "backend error")
}
