package database

import (
	"errors"

	"xpilot/internal/core/apperr"

	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto apperr.NotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.KindNotFound, what+" not found", err)
	}
	return err
}
