package usecase_test

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/backend"
	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Fake: ClientStateRepository
// =====================

type memoryStates struct {
	mu    sync.Mutex
	data  map[string][]byte
	loads int
}

func newMemoryStates() *memoryStates {
	return &memoryStates{data: map[string][]byte{}}
}

func (m *memoryStates) Load(ctx context.Context, ns, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	b, ok := m.data[ns+"/"+key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return b, nil
}

func (m *memoryStates) Save(ctx context.Context, ns, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[ns+"/"+key] = append([]byte(nil), payload...)
	return nil
}

func (m *memoryStates) Delete(ctx context.Context, ns, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, ns+"/"+key)
	return nil
}

func (m *memoryStates) get(ns, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[ns+"/"+key]
	return b, ok
}

// =====================
// Mock: backend
// =====================

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) FetchAllProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]model.Product)
	return p, args.Error(1)
}

func (m *MockBackend) GetProduct(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, identifier, password string) (model.UserIdentity, error) {
	args := m.Called(ctx, identifier, password)
	u, _ := args.Get(0).(model.UserIdentity)
	return u, args.Error(1)
}

func (m *MockBackend) Signup(ctx context.Context, req backend.SignupRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockBackend) Checkout(ctx context.Context, token string, req backend.CheckoutRequest) (backend.CheckoutResult, error) {
	args := m.Called(ctx, token, req)
	r, _ := args.Get(0).(backend.CheckoutResult)
	return r, args.Error(1)
}

func newRegistry(t *testing.T, states repo.ClientStateRepository, source catalog.ProductSource, size int) *usecase.SessionRegistry {
	t.Helper()
	r, err := usecase.NewSessionRegistry(states, source, usecase.SessionSettings{
		Catalog:   catalog.Settings{PageSize: 30, SaleThreshold: 3000000},
		LoginPath: "/login",
		CacheSize: size,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func sampleProducts() []model.Product {
	return []model.Product{
		{ID: "p1", Name: "Running Shoe", Price: 1000000, Category: "Shoes"},
		{ID: "p2", Name: "Leather Bag", Price: 4000000, Category: "Bags"},
		{ID: "p3", Name: "Trail Shoe", Price: 2000000, Category: "Shoes"},
	}
}
