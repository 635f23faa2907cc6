package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SyncLeaseRepository stores one expiring lease row per store in sync_leases.
type SyncLeaseRepository interface {
	// Acquire takes the lease when it is free or expired and reports whether it did.
	Acquire(ctx context.Context, storeID uuid.UUID, token string, ttl time.Duration) (bool, error)
	// Release drops the lease only if it is still held under token.
	Release(ctx context.Context, storeID uuid.UUID, token string) error
}

type syncLeaseRepo struct {
	db  DB
	now func() time.Time
}

func NewSyncLeaseRepo(db DB) SyncLeaseRepository {
	return &syncLeaseRepo{db: db, now: time.Now}
}

func (r *syncLeaseRepo) Acquire(ctx context.Context, storeID uuid.UUID, token string, ttl time.Duration) (bool, error) {
	now := r.now().UTC()
	query := `
		INSERT INTO sync_leases (store_id, token, acquired_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id) DO UPDATE
		SET token = EXCLUDED.token, acquired_at = EXCLUDED.acquired_at, expires_at = EXCLUDED.expires_at
		WHERE sync_leases.expires_at < EXCLUDED.acquired_at
	`
	tag, err := r.db.Exec(ctx, query, storeID, token, now, now.Add(ttl))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *syncLeaseRepo) Release(ctx context.Context, storeID uuid.UUID, token string) error {
	query := `DELETE FROM sync_leases WHERE store_id = $1 AND token = $2`
	_, err := r.db.Exec(ctx, query, storeID, token)
	return err
}
