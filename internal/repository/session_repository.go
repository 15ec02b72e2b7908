package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sketchbin/internal/model"
)

// ErrNoRowsAffected signals an insert that reported success but wrote
// nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// SessionRepository manages bearer-token session rows.
type SessionRepository interface {
	// Create inserts the session. A token collision surfaces as
	// gorm.ErrDuplicatedKey and is retryable with a fresh token.
	Create(ctx context.Context, session *model.Session) error
	// FindUserByToken resolves the owning user of a token in one query.
	FindUserByToken(ctx context.Context, token string) (*model.User, error)
	// DeleteByToken removes the session row. Deleting an unknown token is
	// not an error.
	DeleteByToken(ctx context.Context, token string) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository builds a GORM-backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	res := r.db.WithContext(ctx).Create(session)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *sessionRepository) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN sessions ON sessions.user_id = users.id").
		Where("sessions.token = ?", token).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error
}
