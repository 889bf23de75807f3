package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tourops/backend/internal/domain/shared"
)

// translateNotFound maps gorm.ErrRecordNotFound to a NOT_FOUND domain error
func translateNotFound(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NotFound(resource, id.String())
	}
	return err
}

// isDuplicateKey reports whether err is a unique constraint violation.
// TranslateError covers postgres; the string checks cover drivers without
// a dialect translator.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
