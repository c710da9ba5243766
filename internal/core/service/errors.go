package service

import (
	"errors"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// asStorageError guarantees store failures reach callers as *domain.StorageError.
func asStorageError(op, collection string, err error) error {
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Collection: collection, Err: err}
}
