package services

import (
	"errors"
	"fmt"
	"net/http"

	"woosync/internal/locking"
)

var (
	ErrStoreNotFound      = errors.New("store not found")
	ErrStoreMisconfigured = errors.New("store configuration is incomplete")
	ErrSyncInProgress     = errors.New("a sync for this store is already running")
)

// RemoteCatalogError wraps a failure to read the remote catalog. Nothing was written.
type RemoteCatalogError struct {
	Err error
}

func (e *RemoteCatalogError) Error() string {
	return fmt.Sprintf("failed to fetch remote catalog: %v", e.Err)
}

func (e *RemoteCatalogError) Unwrap() error { return e.Err }

// HTTPStatus maps sync errors to the status the trigger endpoint answers with.
// Remote catalog and storage failures are 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreMisconfigured):
		return http.StatusBadRequest
	case errors.Is(err, ErrSyncInProgress), errors.Is(err, locking.ErrLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
