package stores

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/MrEthical07/fittrack"
	"gorm.io/gorm"
)

const (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound errors.Error = "not found"
	// ErrDuplicateUsername is returned when the username is taken.
	ErrDuplicateUsername errors.Error = "username already exists"
	// ErrDuplicateEmail is returned when the email is taken.
	ErrDuplicateEmail errors.Error = "email already exists"
	// ErrDuplicateName is returned when a food or exercise name is taken.
	ErrDuplicateName errors.Error = "name already exists"
	// ErrConflict is returned for any other unique constraint violation.
	ErrConflict errors.Error = "conflicts with an existing entry"
)

// storeError maps gorm errors onto the package sentinels and wraps the rest
// as [fittrack.ErrStorageUnavailable].
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w: %w", op, fittrack.ErrStorageUnavailable, err)
	}
}
