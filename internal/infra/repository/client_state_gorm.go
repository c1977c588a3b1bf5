package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientStateGormRepository struct {
	db *gorm.DB
}

// DI
func NewClientStateGormRepository(db *gorm.DB) *ClientStateGormRepository {
	return &ClientStateGormRepository{db: db}
}

func (r *ClientStateGormRepository) Load(ctx context.Context, namespace, ownerKey string) ([]byte, error) {
	var st model.ClientState

	err := r.db.WithContext(ctx).
		Where("namespace = ? AND owner_key = ?", namespace, ownerKey).
		First(&st).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(st.Payload), nil
}

// namespace + owner_key のユニーク制約でupsert
func (r *ClientStateGormRepository) Save(ctx context.Context, namespace, ownerKey string, payload []byte) error {
	st := model.ClientState{
		Namespace: namespace,
		OwnerKey:  ownerKey,
		Payload:   string(payload),
		UpdatedAt: time.Now(),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "owner_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&st).Error
}

func (r *ClientStateGormRepository) Delete(ctx context.Context, namespace, ownerKey string) error {
	return r.db.WithContext(ctx).
		Where("namespace = ? AND owner_key = ?", namespace, ownerKey).
		Delete(&model.ClientState{}).Error
}
