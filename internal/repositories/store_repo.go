package repositories

import (
	"context"
	"errors"

	"woosync/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StoreRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	List(ctx context.Context) ([]*models.Store, error)
	UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error
}

type storeRepo struct {
	db DB
}

func NewStoreRepo(db DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store := &models.Store{}
	query := `
		SELECT id, tenant_id, name, url, api_key, api_secret, currency, created_at, updated_at
		FROM stores
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&store.ID, &store.TenantID, &store.Name, &store.URL, &store.APIKey, &store.APISecret, &store.Currency, &store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return store, nil
}

func (r *storeRepo) List(ctx context.Context) ([]*models.Store, error) {
	query := `
		SELECT id, tenant_id, name, url, api_key, api_secret, currency, created_at, updated_at
		FROM stores
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*models.Store
	for rows.Next() {
		store := &models.Store{}
		if err := rows.Scan(&store.ID, &store.TenantID, &store.Name, &store.URL, &store.APIKey, &store.APISecret, &store.Currency, &store.CreatedAt, &store.UpdatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

func (r *storeRepo) UpdateCurrency(ctx context.Context, id uuid.UUID, currency string) error {
	query := `UPDATE stores SET currency = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, currency, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
