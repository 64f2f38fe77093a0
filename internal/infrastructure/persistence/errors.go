package persistence

import (
	"errors"

	"github.com/avocado/teamhub/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm sentinel errors onto domain errors.
// Anything else is returned unchanged for the caller to log.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// affected returns ErrNotFound when a write matched no rows
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
