package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProductModeReplace = "replace"
	ProductModeStamped = "stamped"
)

// SyncRun is the unit of work of one reconciliation. Stamp is generated once and
// written to every row the run touches; cleanup deletes rows stamped strictly before it.
type SyncRun struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Stamp     time.Time `json:"stamp"`
	StartedAt time.Time `json:"started_at"`
}

// NewSyncRun truncates the stamp to microseconds, the precision of a postgres
// timestamptz, so the stored value compares equal to Stamp.
func NewSyncRun(storeID uuid.UUID, now time.Time) SyncRun {
	stamp := now.UTC().Truncate(time.Microsecond)
	return SyncRun{
		ID:        uuid.New(),
		StoreID:   storeID,
		Stamp:     stamp,
		StartedAt: stamp,
	}
}

// ProductSyncError records a product whose images could not be written.
// The run continues past it.
type ProductSyncError struct {
	WooID     int64     `json:"woo_id"`
	ProductID uuid.UUID `json:"product_id"`
	Stage     string    `json:"stage"`
	Error     string    `json:"error"`
}

type SyncResult struct {
	RunID           uuid.UUID          `json:"run_id"`
	StoreID         uuid.UUID          `json:"store_id"`
	Mode            string             `json:"mode"`
	ProductsFetched int                `json:"products_fetched"`
	ProductsWritten int                `json:"products_written"`
	ProductsDeleted int64              `json:"products_deleted"`
	ImagesUpserted  int                `json:"images_upserted"`
	ImagesDeleted   int64              `json:"images_deleted"`
	CurrencyUpdated bool               `json:"currency_updated"`
	ProductErrors   []ProductSyncError `json:"product_errors,omitempty"`
	StartedAt       time.Time          `json:"started_at"`
	FinishedAt      time.Time          `json:"finished_at"`
}
