package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"woosync/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	// ReplaceAll deletes every product of the run's store and inserts products, atomically.
	ReplaceAll(ctx context.Context, run models.SyncRun, products []*models.Product) (int64, error)
	// UpsertStamped writes products keyed by (store_id, woo_id) with synced_at = run stamp.
	UpsertStamped(ctx context.Context, run models.SyncRun, products []*models.Product) error
	// DeleteStale removes the store's products stamped before the run.
	DeleteStale(ctx context.Context, run models.SyncRun) (int64, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.Product, error)
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

const insertProductSQL = `
		INSERT INTO products (id, store_id, woo_id, name, price, stock_quantity, status, type, variations, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`

const upsertProductSQL = insertProductSQL + `
		ON CONFLICT (store_id, woo_id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, stock_quantity = EXCLUDED.stock_quantity,
			status = EXCLUDED.status, type = EXCLUDED.type, variations = EXCLUDED.variations,
			synced_at = EXCLUDED.synced_at, updated_at = NOW()
	`

func (r *productRepo) ReplaceAll(ctx context.Context, run models.SyncRun, products []*models.Product) (int64, error) {
	var deleted int64
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE store_id = $1`, run.StoreID)
		if err != nil {
			return fmt.Errorf("failed to delete products: %w", err)
		}
		deleted = tag.RowsAffected()
		return writeProducts(ctx, tx, insertProductSQL, run, products)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *productRepo) UpsertStamped(ctx context.Context, run models.SyncRun, products []*models.Product) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return writeProducts(ctx, tx, upsertProductSQL, run, products)
	})
}

func (r *productRepo) DeleteStale(ctx context.Context, run models.SyncRun) (int64, error) {
	query := `DELETE FROM products WHERE store_id = $1 AND synced_at < $2`
	tag, err := r.db.Exec(ctx, query, run.StoreID, run.Stamp)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.Product, error) {
	query := `
		SELECT id, store_id, woo_id, name, price, stock_quantity, status, type, variations, synced_at, created_at, updated_at
		FROM products
		WHERE store_id = $1
		ORDER BY woo_id ASC
	`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		var variations []byte
		if err := rows.Scan(&product.ID, &product.StoreID, &product.WooID, &product.Name, &product.Price, &product.StockQuantity,
			&product.Status, &product.Type, &variations, &product.SyncedAt, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		if len(variations) > 0 {
			if err := json.Unmarshal(variations, &product.Variations); err != nil {
				return nil, fmt.Errorf("invalid variations for product %s: %w", product.ID, err)
			}
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func writeProducts(ctx context.Context, tx pgx.Tx, query string, run models.SyncRun, products []*models.Product) error {
	for _, p := range products {
		p.StoreID = run.StoreID
		p.SyncedAt = run.Stamp
		if p.ID == uuid.Nil {
			p.ID = models.ProductIDFor(run.StoreID, p.WooID)
		}

		variations, err := marshalVariations(p.Variations)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, p.ID, p.StoreID, p.WooID, p.Name, p.Price, p.StockQuantity, p.Status, p.Type, variations, p.SyncedAt); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.WooID, err)
		}
	}
	return nil
}

func marshalVariations(v []models.ProductVariation) ([]byte, error) {
	if len(v) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}
