package repository

import (
	"errors"

	"github.com/splax/shiftwatch/internal/apperr"
)

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrInvalidArgument indicates the store rejected a value as malformed.
	ErrInvalidArgument = errors.New("repository: invalid argument")
)

// Missing converts ErrNotFound into a 404 naming resource and passes other errors through.
func Missing(err error, resource string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}
