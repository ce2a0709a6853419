package database

import (
	"errors"
	"fmt"

	"anoa.com/skillswap/pkg/apperror"
	"gorm.io/gorm"
)

// Translate maps gorm errors onto apperror sentinels, naming the entity involved.
func Translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", entity, apperror.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", entity, apperror.ErrConflict)
	}
	return err
}
