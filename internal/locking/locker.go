package locking

import (
	"context"
	"errors"
	"time"

	"woosync/internal/repositories"

	"github.com/google/uuid"
)

// ErrLocked means another run currently holds the store.
var ErrLocked = errors.New("store sync already in progress")

// Locker serialises sync runs per store.
type Locker interface {
	Acquire(ctx context.Context, storeID uuid.UUID, ttl time.Duration) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

// LeaseLocker keeps locks as rows in the sync_leases table.
type LeaseLocker struct {
	repo repositories.SyncLeaseRepository
}

func NewLeaseLocker(repo repositories.SyncLeaseRepository) *LeaseLocker {
	return &LeaseLocker{repo: repo}
}

func (l *LeaseLocker) Acquire(ctx context.Context, storeID uuid.UUID, ttl time.Duration) (Lease, error) {
	token := uuid.NewString()
	ok, err := l.repo.Acquire(ctx, storeID, token, ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return &dbLease{repo: l.repo, storeID: storeID, token: token}, nil
}

type dbLease struct {
	repo    repositories.SyncLeaseRepository
	storeID uuid.UUID
	token   string
}

func (l *dbLease) Release(ctx context.Context) error {
	return l.repo.Release(ctx, l.storeID, l.token)
}
