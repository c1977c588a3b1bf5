package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"storefront/internal/debounce"
	"storefront/internal/domain/model"

	"go.uber.org/zap"
)

// 検索入力が止まってから反映するまでの時間
const DefaultSearchDebounce = 450 * time.Millisecond

// ProductSource は全商品を取得する協力者（バックエンドAPI）
type ProductSource interface {
	FetchAllProducts(ctx context.Context) ([]model.Product, error)
}

type Settings struct {
	PageSize       int
	SaleThreshold  int64
	SearchDebounce time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		PageSize:       DefaultPageSize,
		SaleThreshold:  DefaultSaleThreshold,
		SearchDebounce: DefaultSearchDebounce,
	}
}

// View はストア画面に描画する導出結果
type View struct {
	Products    []model.Product   `json:"products"`
	Categories  []string          `json:"categories"`
	Filter      model.FilterState `json:"filter"`
	Query       string            `json:"q"`
	Search      string            `json:"search"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	Total       int               `json:"total"`
	From        int               `json:"from"`
	To          int               `json:"to"`
	PageNumbers []PageItem        `json:"page_numbers"`
	Loaded      bool              `json:"loaded"`
	Error       string            `json:"error,omitempty"`
	Empty       bool              `json:"empty"`
	CanReset    bool              `json:"can_reset"`
}

// Browser はセッション1つ分のストア画面の状態。
// デバウンスのタイマーは別goroutineで発火するので mu で守る。
type Browser struct {
	mu       sync.Mutex
	source   ProductSource
	settings Settings
	logger   *zap.Logger
	search   *debounce.Debouncer

	products []model.Product
	loaded   bool
	loadErr  error

	filter  model.FilterState
	query   string
	applied string
	page    int
}

func NewBrowser(source ProductSource, settings Settings, logger *zap.Logger) *Browser {
	if settings.PageSize < 1 {
		settings.PageSize = DefaultPageSize
	}
	if settings.SaleThreshold <= 0 {
		settings.SaleThreshold = DefaultSaleThreshold
	}
	if settings.SearchDebounce < 0 {
		settings.SearchDebounce = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		source:   source,
		settings: settings,
		logger:   logger,
		search:   debounce.New(settings.SearchDebounce),
		products: []model.Product{},
		filter:   model.DefaultFilterState(),
		page:     1,
	}
}

var ErrNoSource = errors.New("catalog: no product source")

// Load は商品一覧を取得し直す（手動リトライも同じ）。
// 失敗したら前のスナップショットは残してエラーだけ記録する。
func (b *Browser) Load(ctx context.Context) error {
	if b.source == nil {
		b.mu.Lock()
		b.loadErr = ErrNoSource
		b.mu.Unlock()
		return ErrNoSource
	}

	products, err := b.source.FetchAllProducts(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.loadErr = err
		b.logger.Warn("catalog fetch failed", zap.Error(err))
		return err
	}
	if products == nil {
		products = []model.Product{}
	}
	b.products = products
	b.loaded = true
	b.loadErr = nil
	b.clampLocked()
	return nil
}

// EnsureLoaded は最初の1回（ページ表示）だけ取得する
func (b *Browser) EnsureLoaded(ctx context.Context) error {
	b.mu.Lock()
	done := b.loaded || b.loadErr != nil
	b.mu.Unlock()

	if done {
		return nil
	}
	return b.Load(ctx)
}

// SetProducts は取得済みの一覧をそのまま差し替える
func (b *Browser) SetProducts(products []model.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if products == nil {
		products = []model.Product{}
	}
	b.products = products
	b.loaded = true
	b.loadErr = nil
	b.clampLocked()
}

// Products はスナップショットを返す（読み取り専用として扱う）
func (b *Browser) Products() []model.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.products
}

func (b *Browser) Find(id string) (model.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (b *Browser) Filter() model.FilterState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// ApplyFilter は変更があればページを1に戻す
func (b *Browser) ApplyFilter(patch model.FilterPatch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := patch.Apply(b.filter)
	if next == b.filter {
		return
	}
	b.filter = next
	b.page = 1
}

func (b *Browser) SetCategory(category string) {
	b.ApplyFilter(model.FilterPatch{Category: &category})
}

func (b *Browser) SetSale(on bool) {
	b.ApplyFilter(model.FilterPatch{Sale: &on})
}

func (b *Browser) ToggleSale() {
	b.mu.Lock()
	on := !b.filter.Sale
	b.mu.Unlock()
	b.SetSale(on)
}

func (b *Browser) SetGender(g model.Gender) {
	b.ApplyFilter(model.FilterPatch{Gender: &g})
}

func (b *Browser) SetAgeGroup(a model.AgeGroup) {
	b.ApplyFilter(model.FilterPatch{AgeGroup: &a})
}

func (b *Browser) SetInStockOnly(on bool) {
	b.ApplyFilter(model.FilterPatch{InStockOnly: &on})
}

func (b *Browser) SetPriceSort(s model.PriceSort) {
	b.ApplyFilter(model.FilterPatch{Price: &s})
}

// Type はキー入力。入力が止まってから検索語を反映する。
func (b *Browser) Type(q string) {
	b.mu.Lock()
	b.query = q
	b.mu.Unlock()

	b.search.Trigger(func() { b.applySearch(q) })
}

// Search は待たずに検索語を反映する（予約中の反映は取り消す）
func (b *Browser) Search(q string) {
	b.search.Stop()

	b.mu.Lock()
	b.query = q
	b.mu.Unlock()

	b.applySearch(q)
}

// FlushSearch は予約中の検索語をすぐ反映する
func (b *Browser) FlushSearch() bool {
	return b.search.Flush()
}

func (b *Browser) SearchPending() bool {
	return b.search.Pending()
}

func (b *Browser) applySearch(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// 前後の空白だけの違いでは検索語は変わらない
	same := strings.TrimSpace(q) == strings.TrimSpace(b.applied)
	b.applied = q
	if same {
		return
	}
	b.page = 1
}

// SetPage は [1, totalPages] に丸めて設定
func (b *Browser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.page = page
	b.clampLocked()
}

func (b *Browser) NextPage() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.page++
	b.clampLocked()
}

func (b *Browser) PrevPage() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.page--
	b.clampLocked()
}

func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// Reset は絞り込み・検索語・在庫のみ表示をすべて既定値に戻す
func (b *Browser) Reset() {
	b.search.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.filter = model.DefaultFilterState()
	b.query = ""
	b.applied = ""
	b.page = 1
}

// View は現在の状態から表示内容を導出する。
// 絞り込みで総ページ数が減っていればページはここで丸めて保存する。
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := Derive(b.products, b.queryLocked())
	b.page = res.Page

	from, to := 0, 0
	if res.Filtered > 0 {
		from = (res.Page-1)*res.PageSize + 1
		to = min(res.Page*res.PageSize, res.Filtered)
	}

	v := View{
		Products:    res.Items,
		Categories:  Categories(b.products),
		Filter:      b.filter,
		Query:       b.query,
		Search:      b.applied,
		Page:        res.Page,
		PageSize:    res.PageSize,
		TotalPages:  res.TotalPages,
		Total:       res.Filtered,
		From:        from,
		To:          to,
		PageNumbers: res.PageNumbers,
		Loaded:      b.loaded,
		Empty:       b.loaded && res.Filtered == 0,
	}
	v.CanReset = v.Empty
	if b.loadErr != nil {
		v.Error = b.loadErr.Error()
	}
	return v
}

// Close は予約中の検索反映を止める（セッション破棄時）
func (b *Browser) Close() {
	b.search.Stop()
}

func (b *Browser) queryLocked() Query {
	return Query{
		Filter:        b.filter,
		Search:        b.applied,
		Page:          b.page,
		PageSize:      b.settings.PageSize,
		SaleThreshold: b.settings.SaleThreshold,
	}
}

func (b *Browser) clampLocked() {
	n := len(Apply(b.products, b.filter, b.applied, b.settings.SaleThreshold))
	b.page = ClampPage(b.page, TotalPages(n, b.settings.PageSize))
}
