package database

import (
	"errors"
	"fmt"
	"testing"

	"anoa.com/skillswap/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil, "proposal"))

	err := Translate(fmt.Errorf("query: %w", gorm.ErrRecordNotFound), "proposal")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "proposal not found: resource not found")

	assert.ErrorIs(t, Translate(gorm.ErrDuplicatedKey, "application"), apperror.ErrConflict)

	other := errors.New("connection reset")
	assert.Equal(t, other, Translate(other, "swap"))
}
