package repository

import (
	"context"
	"testing"

	"storefront/internal/infra/db"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type ClientStateGormSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *ClientStateGormRepository
}

func TestClientStateGormSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	suite.Run(t, new(ClientStateGormSuite))
}

func (s *ClientStateGormSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		s.T().Skipf("docker unavailable: %v", err)
	}
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = gorm.Open(gormpg.Open(dsn), &gorm.Config{})
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate(s.db))

	s.repo = NewClientStateGormRepository(s.db)
}

func (s *ClientStateGormSuite) TearDownSuite() {
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *ClientStateGormSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE client_states").Error)
}

func (s *ClientStateGormSuite) TestLoadMissing() {
	_, err := s.repo.Load(context.Background(), repo.NamespaceCart, "s1")
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *ClientStateGormSuite) TestSaveUpsert() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Save(ctx, repo.NamespaceCart, "s1", []byte(`{"cart":[]}`)))
	s.Require().NoError(s.repo.Save(ctx, repo.NamespaceCart, "s1", []byte(`{"cart":[],"isOpen":true}`)))

	got, err := s.repo.Load(ctx, repo.NamespaceCart, "s1")
	s.Require().NoError(err)
	s.JSONEq(`{"cart":[],"isOpen":true}`, string(got))

	var count int64
	s.Require().NoError(s.db.Table("client_states").Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *ClientStateGormSuite) TestDelete() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Save(ctx, repo.NamespaceUser, "s1", []byte(`{}`)))
	s.Require().NoError(s.repo.Delete(ctx, repo.NamespaceUser, "s1"))

	_, err := s.repo.Load(ctx, repo.NamespaceUser, "s1")
	s.ErrorIs(err, repo.ErrNotFound)
}
