package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sketchbin/internal/model"
)

// CodeRepository manages one-time code rows.
type CodeRepository interface {
	Create(ctx context.Context, code *model.OneTimeCode) error
	// HasActiveCode reports whether the user already holds a code created
	// after the given instant.
	HasActiveCode(ctx context.Context, userID uint, since time.Time) (bool, error)
	// Consume atomically claims the code and deletes every code belonging to
	// the owning user, returning that user's ID. Exactly one concurrent
	// caller can win; the rest get gorm.ErrRecordNotFound.
	Consume(ctx context.Context, code string) (uint, error)
	// DeleteByUserID removes all codes of a user, used to roll back an
	// issued code whose email could not be delivered.
	DeleteByUserID(ctx context.Context, userID uint) error
}

type codeRepository struct {
	db *gorm.DB
}

// NewCodeRepository builds a GORM-backed repository.
func NewCodeRepository(db *gorm.DB) CodeRepository {
	return &codeRepository{db: db}
}

func (r *codeRepository) Create(ctx context.Context, code *model.OneTimeCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *codeRepository) HasActiveCode(ctx context.Context, userID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OneTimeCode{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Consume runs inside a transaction. The delete targeting the matched row ID
// is the exclusivity test: whichever transaction gets RowsAffected == 1 owns
// the code, everyone else observes it as already gone. A plain read followed
// by a blanket delete would let two verifications of the same code both
// succeed.
func (r *codeRepository) Consume(ctx context.Context, code string) (uint, error) {
	var userID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var otc model.OneTimeCode
		if err := tx.Where("code = ?", code).First(&otc).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", otc.ID).Delete(&model.OneTimeCode{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// Invalidate every sibling code so no stale code stays redeemable.
		if err := tx.Where("user_id = ?", otc.UserID).Delete(&model.OneTimeCode{}).Error; err != nil {
			return err
		}
		userID = otc.UserID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (r *codeRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.OneTimeCode{}).Error
}
