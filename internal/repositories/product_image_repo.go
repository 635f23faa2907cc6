package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"woosync/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductImageRepository only ever writes or deletes rows whose source is 'woo'.
type ProductImageRepository interface {
	UpsertWoo(ctx context.Context, images []*models.ProductImage) error
	DeleteStaleWoo(ctx context.Context, productID uuid.UUID, stamp time.Time) (int64, error)
	DeleteOrphanedWoo(ctx context.Context, storeID uuid.UUID) (int64, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.ProductImage, error)
}

type productImageRepo struct {
	db DB
}

func NewProductImageRepo(db DB) ProductImageRepository {
	return &productImageRepo{db: db}
}

// UpsertWoo writes images in one transaction. An existing 'woo' row with the same
// (product_id, original_url) is updated and restamped; a row of another source keeps its data.
// Each written image gets the id stored in the table; images shadowed by a manual row keep theirs.
func (r *productImageRepo) UpsertWoo(ctx context.Context, images []*models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	query := `
		INSERT INTO product_images (id, store_id, product_id, original_url, source, type, display_order, alt_text, description, synced_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (product_id, original_url) DO UPDATE
		SET type = EXCLUDED.type, display_order = EXCLUDED.display_order, alt_text = EXCLUDED.alt_text,
			description = EXCLUDED.description, synced_at = EXCLUDED.synced_at
		WHERE product_images.source = 'woo'
		RETURNING id
	`
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, img := range images {
			candidate := img.ID
			if candidate == uuid.Nil {
				candidate = uuid.New()
			}

			var stored uuid.UUID
			err := tx.QueryRow(ctx, query, candidate, img.StoreID, img.ProductID, img.OriginalURL, models.ImageSourceWoo, img.Type,
				img.DisplayOrder, img.AltText, img.Description, img.SyncedAt).Scan(&stored)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				// manual row owns this url
				continue
			case err != nil:
				return fmt.Errorf("failed to upsert image %s: %w", img.OriginalURL, err)
			}
			img.ID = stored
			img.Source = models.ImageSourceWoo
		}
		return nil
	})
}

// DeleteStaleWoo removes the product's woo images stamped strictly before stamp.
func (r *productImageRepo) DeleteStaleWoo(ctx context.Context, productID uuid.UUID, stamp time.Time) (int64, error) {
	query := `DELETE FROM product_images WHERE product_id = $1 AND source = 'woo' AND synced_at < $2`
	tag, err := r.db.Exec(ctx, query, productID, stamp)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteOrphanedWoo removes woo images of the store whose product row no longer exists.
func (r *productImageRepo) DeleteOrphanedWoo(ctx context.Context, storeID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM product_images pi
		WHERE pi.store_id = $1 AND pi.source = 'woo'
			AND NOT EXISTS (SELECT 1 FROM products p WHERE p.id = pi.product_id)
	`
	tag, err := r.db.Exec(ctx, query, storeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *productImageRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductImage, error) {
	query := `
		SELECT id, store_id, product_id, original_url, source, type, display_order, alt_text, description, synced_at, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY display_order ASC, created_at ASC
	`
	return r.list(ctx, query, productID)
}

func (r *productImageRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*models.ProductImage, error) {
	query := `
		SELECT id, store_id, product_id, original_url, source, type, display_order, alt_text, description, synced_at, created_at
		FROM product_images
		WHERE store_id = $1
		ORDER BY product_id, display_order ASC, created_at ASC
	`
	return r.list(ctx, query, storeID)
}

func (r *productImageRepo) list(ctx context.Context, query string, arg uuid.UUID) ([]*models.ProductImage, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		img := &models.ProductImage{}
		if err := rows.Scan(&img.ID, &img.StoreID, &img.ProductID, &img.OriginalURL, &img.Source, &img.Type,
			&img.DisplayOrder, &img.AltText, &img.Description, &img.SyncedAt, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
