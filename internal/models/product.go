package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	ProductTypeSimple   = "simple"
	ProductTypeVariable = "variable"
)

// productNamespace seeds the deterministic local product ids.
var productNamespace = uuid.MustParse("6f1c5c1e-4b7a-4f4e-9d0a-3c2b8e5a7d10")

// ProductIDFor returns the local id of the product mirrored from wooID in the given store.
// The same pair always yields the same id, so a delete-all/reinsert cycle keeps
// image rows attached to their product.
func ProductIDFor(storeID uuid.UUID, wooID int64) uuid.UUID {
	return uuid.NewSHA1(productNamespace, []byte(storeID.String()+":"+strconv.FormatInt(wooID, 10)))
}

type Product struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	StoreID       uuid.UUID          `json:"store_id" db:"store_id"`
	WooID         int64              `json:"woo_id" db:"woo_id"`
	Name          string             `json:"name" db:"name"`
	Price         float64            `json:"price" db:"price"`
	StockQuantity *int               `json:"stock_quantity" db:"stock_quantity"`
	Status        string             `json:"status" db:"status"`
	Type          string             `json:"type" db:"type"`
	Variations    []ProductVariation `json:"variations,omitempty" db:"variations"`
	SyncedAt      time.Time          `json:"synced_at" db:"synced_at"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// ProductVariation is stored as part of its parent product row.
type ProductVariation struct {
	WooID         int64             `json:"woo_id"`
	SKU           string            `json:"sku,omitempty"`
	Price         float64           `json:"price"`
	StockQuantity *int              `json:"stock_quantity"`
	Status        string            `json:"status,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}
