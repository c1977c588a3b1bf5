package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultSessionCacheSize = 1024

type SessionSettings struct {
	Catalog   catalog.Settings
	LoginPath string
	CacheSize int
}

// Session は1ブラウザ分の状態（カート・ストア画面・ログインユーザー）
type Session struct {
	ID      string
	Cart    *cart.Store
	Catalog *catalog.Browser

	mu         sync.Mutex
	checkoutMu sync.Mutex
	user       model.UserIdentity
	states     repo.ClientStateRepository
	logger     *zap.Logger
}

// 同一セッションの操作は1つずつ
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Session) userLocked() model.UserIdentity {
	return s.user
}

func (s *Session) setUserLocked(ctx context.Context, u model.UserIdentity) {
	s.user = u
	if err := saveJSON(ctx, s.states, repo.NamespaceUser, s.ID, u); err != nil {
		s.logger.Warn("save user identity failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (s *Session) clearUserLocked(ctx context.Context) {
	s.user = model.UserIdentity{}
	if s.states == nil {
		return
	}
	if err := s.states.Delete(ctx, repo.NamespaceUser, s.ID); err != nil {
		s.logger.Warn("delete user identity failed", zap.String("session_id", s.ID), zap.Error(err))
	}
}

// cart.Persister の実装（cart-storage に JSON で保存）
type cartPersister struct {
	states    repo.ClientStateRepository
	sessionID string
}

func (p cartPersister) SaveCart(ctx context.Context, state model.CartState) error {
	return saveJSON(ctx, p.states, repo.NamespaceCart, p.sessionID, state)
}

// SessionRegistry は生きているセッションをLRUで保持する。
// 追い出されたセッションは次のアクセスで保存済みの状態から復元される。
type SessionRegistry struct {
	mu        sync.Mutex
	cache     *lru.Cache
	hydrating singleflight.Group
	states    repo.ClientStateRepository
	source    catalog.ProductSource
	settings  SessionSettings
	logger    *zap.Logger
}

// DI
func NewSessionRegistry(
	states repo.ClientStateRepository,
	source catalog.ProductSource,
	settings SessionSettings,
	logger *zap.Logger,
) (*SessionRegistry, error) {
	if settings.CacheSize < 1 {
		settings.CacheSize = DefaultSessionCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &SessionRegistry{
		states:   states,
		source:   source,
		settings: settings,
		logger:   logger,
	}

	cache, err := lru.NewWithEvict(settings.CacheSize, func(key, value interface{}) {
		if s, ok := value.(*Session); ok {
			s.Catalog.Close()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Get はセッションを返す。無ければ保存済みの状態から作る（読み込みは1回だけ）。
// 保存先の読み込みは registry のロックの外で行い、同じ id の同時読み込みは1つにまとめる。
func (r *SessionRegistry) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, errors.New("session id is empty")
	}
	if s, ok := r.cached(id); ok {
		return s, nil
	}

	v, err, _ := r.hydrating.Do(id, func() (interface{}, error) {
		if s, ok := r.cached(id); ok {
			return s, nil
		}
		s := r.hydrate(ctx, id)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.cache.Add(id, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *SessionRegistry) cached(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (r *SessionRegistry) hydrate(ctx context.Context, id string) *Session {
	log := r.logger.With(zap.String("session_id", id))

	var cartState model.CartState
	if err := loadJSON(ctx, r.states, repo.NamespaceCart, id, &cartState); err != nil {
		log.Warn("restore cart failed", zap.Error(err))
		cartState = model.CartState{}
	}

	var user model.UserIdentity
	if err := loadJSON(ctx, r.states, repo.NamespaceUser, id, &user); err != nil {
		log.Warn("restore user identity failed", zap.Error(err))
		user = model.UserIdentity{}
	}

	var persister cart.Persister
	if r.states != nil {
		persister = cartPersister{states: r.states, sessionID: id}
	}

	return &Session{
		ID: id,
		Cart: cart.New(cartState, persister,
			cart.WithLoginPath(r.settings.LoginPath),
			cart.WithLogger(log),
		),
		Catalog: catalog.NewBrowser(r.source, r.settings.Catalog, log),
		user:    user,
		states:  r.states,
		logger:  log,
	}
}

// Forget はメモリ上のセッションを捨てる（保存済みの状態は残る）
func (r *SessionRegistry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(id)
}

func (r *SessionRegistry) Len() int {
	return r.cache.Len()
}

// Close は全セッションのタイマーを止める
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}

// 保存が無い場合は out をそのままにして nil
func loadJSON(ctx context.Context, states repo.ClientStateRepository, ns, key string, out any) error {
	if states == nil {
		return nil
	}
	b, err := states.Load(ctx, ns, key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", ns, err)
	}
	return nil
}

func saveJSON(ctx context.Context, states repo.ClientStateRepository, ns, key string, v any) error {
	if states == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ns, err)
	}
	return states.Save(ctx, ns, key, b)
}
