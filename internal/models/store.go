package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrMissingCredentials is returned when a store cannot be reached because its
// URL, consumer key or consumer secret is blank.
var ErrMissingCredentials = errors.New("store is missing url, api key or api secret")

// Store is a tenant-owned WooCommerce shop. It is read-only input to the reconciler,
// apart from the cached currency code.
type Store struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	URL       string    `json:"url" db:"url"`
	APIKey    string    `json:"-" db:"api_key"`
	APISecret string    `json:"-" db:"api_secret"`
	Currency  string    `json:"currency" db:"currency"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (s *Store) ValidateCredentials() error {
	if strings.TrimSpace(s.URL) == "" || strings.TrimSpace(s.APIKey) == "" || strings.TrimSpace(s.APISecret) == "" {
		return ErrMissingCredentials
	}
	return nil
}
