package repository

import (
	"errors"

	"storefront/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto the application's NotFound kind.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource)
	}
	return err
}

// deleteOrphans removes child rows of parent that are no longer in keep.
func deleteOrphans(tx *gorm.DB, model any, parentColumn string, parentID uuid.UUID, keep []uuid.UUID) (int64, error) {
	q := tx.Where(parentColumn+" = ?", parentID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	res := q.Delete(model)
	return res.RowsAffected, res.Error
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
