package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	"storefront/internal/format"

	"go.uber.org/zap"
)

const DefaultRelatedLimit = 8

// CatalogUsecase はストア画面と商品詳細の業務ロジック
type CatalogUsecase struct {
	sessions     *SessionRegistry
	products     ProductFetcher
	prices       *format.PriceFormatter
	relatedLimit int
	logger       *zap.Logger
}

// DI
func NewCatalogUsecase(
	sessions *SessionRegistry,
	products ProductFetcher,
	prices *format.PriceFormatter,
	relatedLimit int,
	logger *zap.Logger,
) *CatalogUsecase {
	if prices == nil {
		prices = format.NewPriceFormatter("id", format.DefaultSymbol)
	}
	if relatedLimit < 0 {
		relatedLimit = DefaultRelatedLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogUsecase{
		sessions:     sessions,
		products:     products,
		prices:       prices,
		relatedLimit: relatedLimit,
		logger:       logger,
	}
}

type SearchInput struct {
	Query     string
	Immediate bool
}

type ProductDetailResponse struct {
	Product    model.Product   `json:"product"`
	PriceLabel string          `json:"price_label"`
	InStock    bool            `json:"in_stock"`
	Related    []model.Product `json:"related"`
}

// View は初回だけ商品一覧を取得してから画面状態を返す
func (u *CatalogUsecase) View(ctx context.Context, sessionID string) (catalog.View, error) {
	return u.fetchThenView(ctx, sessionID, func(s *Session) {
		_ = s.Catalog.EnsureLoaded(ctx)
	})
}

// Reload は手動リトライ。失敗は View の error に出る
func (u *CatalogUsecase) Reload(ctx context.Context, sessionID string) (catalog.View, error) {
	return u.fetchThenView(ctx, sessionID, func(s *Session) {
		_ = s.Catalog.Load(ctx)
	})
}

func (u *CatalogUsecase) ApplyFilter(ctx context.Context, sessionID string, patch model.FilterPatch) (catalog.View, error) {
	if err := validateFilterPatch(patch); err != nil {
		return catalog.View{}, err
	}
	return u.run(ctx, sessionID, func(s *Session) {
		s.Catalog.ApplyFilter(patch)
	})
}

// Search は入力中（デバウンス）か確定（即時）かで分ける
func (u *CatalogUsecase) Search(ctx context.Context, sessionID string, in SearchInput) (catalog.View, error) {
	return u.run(ctx, sessionID, func(s *Session) {
		if in.Immediate {
			s.Catalog.Search(in.Query)
			return
		}
		s.Catalog.Type(in.Query)
	})
}

func (u *CatalogUsecase) SetPage(ctx context.Context, sessionID string, page int) (catalog.View, error) {
	return u.run(ctx, sessionID, func(s *Session) {
		s.Catalog.SetPage(page)
	})
}

func (u *CatalogUsecase) NextPage(ctx context.Context, sessionID string) (catalog.View, error) {
	return u.run(ctx, sessionID, func(s *Session) {
		s.Catalog.NextPage()
	})
}

func (u *CatalogUsecase) PrevPage(ctx context.Context, sessionID string) (catalog.View, error) {
	return u.run(ctx, sessionID, func(s *Session) {
		s.Catalog.PrevPage()
	})
}

func (u *CatalogUsecase) Reset(ctx context.Context, sessionID string) (catalog.View, error) {
	return u.run(ctx, sessionID, func(s *Session) {
		s.Catalog.Reset()
	})
}

// ProductDetail は商品1件と「その他の商品」（自身を除く）
func (u *CatalogUsecase) ProductDetail(ctx context.Context, sessionID, productID string) (ProductDetailResponse, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ProductDetailResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return ProductDetailResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	// 通信はセッションのロックの外（Browser は自前の mu で守られている）
	_ = s.Catalog.EnsureLoaded(ctx)

	p, ok := s.Catalog.Find(productID)
	if !ok {
		p, err = fetchProduct(ctx, u.products, u.logger, productID)
		if err != nil {
			return ProductDetailResponse{}, err
		}
	}

	return ProductDetailResponse{
		Product:    p,
		PriceLabel: u.prices.Format(p.Price),
		InStock:    p.InStock(),
		Related:    catalog.Related(s.Catalog.Products(), p.ID, u.relatedLimit),
	}, nil
}

// 一覧の取得はロックの外で行い、画面状態の導出だけロックする。
// 取得中でもカート操作やフィルタ変更は待たされない。
func (u *CatalogUsecase) fetchThenView(ctx context.Context, sessionID string, fetch func(s *Session)) (catalog.View, error) {
	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return catalog.View{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	fetch(s)

	var v catalog.View
	_ = s.do(func() error {
		v = s.Catalog.View()
		return nil
	})
	return v, nil
}

func (u *CatalogUsecase) run(ctx context.Context, sessionID string, fn func(s *Session)) (catalog.View, error) {
	s, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		return catalog.View{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	var v catalog.View
	_ = s.do(func() error {
		fn(s)
		v = s.Catalog.View()
		return nil
	})
	return v, nil
}

func validateFilterPatch(p model.FilterPatch) error {
	if p.Gender != nil && !p.Gender.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid gender")
	}
	if p.AgeGroup != nil && !p.AgeGroup.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid age_group")
	}
	if p.Price != nil && !p.Price.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	return nil
}
