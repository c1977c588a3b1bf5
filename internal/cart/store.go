// Package cart はセッションごとのショッピングカート（明細 + ドロワー表示フラグ）。
package cart

import (
	"context"
	"sync"

	"storefront/internal/domain/model"

	"go.uber.org/zap"
)

// ログイン画面ではドロワーを開かない
const DefaultLoginPath = "/login"

// 変更のたびに状態を保存する約束
type Persister interface {
	SaveCart(ctx context.Context, state model.CartState) error
}

type Option func(*Store)

func WithLoginPath(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.loginPath = path
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store はカートの唯一の正。
// 操作は失敗しない（不正な入力は無視 or 正規化）。保存エラーはログだけ残す。
type Store struct {
	mu        sync.Mutex
	state     model.CartState
	persister Persister
	loginPath string
	logger    *zap.Logger
}

// New は保存済みの状態（無ければ空）から Store を作る。
func New(initial model.CartState, persister Persister, opts ...Option) *Store {
	s := &Store{
		state:     Hydrate(initial),
		persister: persister,
		loginPath: DefaultLoginPath,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate は保存データを不変条件に合わせる（同一商品は1行に、qty<1の行は捨てる）。
func Hydrate(state model.CartState) model.CartState {
	out := model.CartState{IsOpen: state.IsOpen, Lines: make([]model.CartLine, 0, len(state.Lines))}
	index := make(map[string]int, len(state.Lines))

	for _, l := range state.Lines {
		if l.Qty < 1 {
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			out.Lines[i].Qty += l.Qty
			continue
		}
		index[l.ProductID] = len(out.Lines)
		out.Lines = append(out.Lines, l)
	}
	return out
}

// 同一商品は数量加算、無ければ末尾に追加。qty<1 は 1 に丸める。
func (s *Store) AddToCart(ctx context.Context, p model.Product, qty int64) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOfLocked(p.ID); i >= 0 {
		s.state.Lines[i].Qty += qty
	} else {
		s.state.Lines = append(s.state.Lines, model.NewCartLine(p, qty))
	}
	s.persistLocked(ctx, "add")
}

// qty<=0 なら行を削除。範囲外は何もしない。
func (s *Store) UpdateQuantity(ctx context.Context, index int, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.state.Lines) {
		return
	}
	if qty <= 0 {
		s.removeAtLocked(index)
	} else {
		s.state.Lines[index].Qty = qty
	}
	s.persistLocked(ctx, "update")
}

func (s *Store) RemoveItem(ctx context.Context, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.state.Lines) {
		return
	}
	s.removeAtLocked(index)
	s.persistLocked(ctx, "remove")
}

func (s *Store) RemoveByProductID(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(productID)
	if i < 0 {
		return
	}
	s.removeAtLocked(i)
	s.persistLocked(ctx, "remove")
}

// 明細だけ空にする（ドロワーはそのまま）
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Lines = []model.CartLine{}
	s.persistLocked(ctx, "clear")
}

// path がログイン画面なら何もしない
func (s *Store) OpenDrawer(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == s.loginPath {
		return
	}
	s.state.IsOpen = true
	s.persistLocked(ctx, "open")
}

func (s *Store) CloseDrawer(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsOpen = false
	s.persistLocked(ctx, "close")
}

func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total()
}

func (s *Store) ItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ItemCount()
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsOpen
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Lines)
}

// Lines はコピーを返す
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartLine{}, s.state.Lines...)
}

func (s *Store) Snapshot() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CartState{
		Lines:  append([]model.CartLine{}, s.state.Lines...),
		IsOpen: s.state.IsOpen,
	}
}

func (s *Store) indexOfLocked(productID string) int {
	for i, l := range s.state.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAtLocked(index int) {
	lines := make([]model.CartLine, 0, len(s.state.Lines)-1)
	lines = append(lines, s.state.Lines[:index]...)
	lines = append(lines, s.state.Lines[index+1:]...)
	s.state.Lines = lines
}

func (s *Store) persistLocked(ctx context.Context, op string) {
	if s.persister == nil {
		return
	}
	snapshot := model.CartState{
		Lines:  append([]model.CartLine{}, s.state.Lines...),
		IsOpen: s.state.IsOpen,
	}
	if err := s.persister.SaveCart(ctx, snapshot); err != nil {
		s.logger.Warn("cart persist failed", zap.String("op", op), zap.Error(err))
	}
}
