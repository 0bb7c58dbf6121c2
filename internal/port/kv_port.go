package port

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded reports that the medium is full. Data kept elsewhere will
	// not survive a restart.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrUnavailable reports that the medium cannot be reached or is disabled.
	ErrUnavailable = errors.New("storage unavailable")
)

// KVStore is the durable key-value medium a cart is persisted to.
// Get reports found=false for a missing key; that is not an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
