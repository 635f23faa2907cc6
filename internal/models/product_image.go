package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ImageSourceWoo    = "woo"
	ImageSourceManual = "manual"

	ImageTypeFeatured = "featured"
	ImageTypeGallery  = "gallery"
)

// ProductImage rows with Source == ImageSourceWoo belong to the reconciler.
// Rows from any other source are never read, modified or deleted by it.
type ProductImage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	StoreID      uuid.UUID `json:"store_id" db:"store_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	OriginalURL  string    `json:"original_url" db:"original_url"`
	Source       string    `json:"source" db:"source"`
	Type         string    `json:"type" db:"type"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	AltText      *string   `json:"alt_text" db:"alt_text"`
	Description  *string   `json:"description" db:"description"`
	SyncedAt     time.Time `json:"synced_at" db:"synced_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ImageTypeForPosition gives the first image the featured slot and the rest gallery.
func ImageTypeForPosition(index int) string {
	if index == 0 {
		return ImageTypeFeatured
	}
	return ImageTypeGallery
}
