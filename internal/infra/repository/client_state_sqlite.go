package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	repo "storefront/internal/repository"
)

// ローカル開発用（STORE_DRIVER=sqlite）
type ClientStateSQLiteRepository struct {
	db *sql.DB
}

// DI
func NewClientStateSQLiteRepository(db *sql.DB) *ClientStateSQLiteRepository {
	return &ClientStateSQLiteRepository{db: db}
}

func (r *ClientStateSQLiteRepository) Load(ctx context.Context, namespace, ownerKey string) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM client_states WHERE namespace = ? AND owner_key = ?`,
		namespace, ownerKey,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (r *ClientStateSQLiteRepository) Save(ctx context.Context, namespace, ownerKey string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO client_states (namespace, owner_key, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, owner_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		namespace, ownerKey, string(payload), time.Now().Unix(),
	)
	return err
}

func (r *ClientStateSQLiteRepository) Delete(ctx context.Context, namespace, ownerKey string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM client_states WHERE namespace = ? AND owner_key = ?`,
		namespace, ownerKey,
	)
	return err
}
