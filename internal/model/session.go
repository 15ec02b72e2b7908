package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session binds an opaque bearer token to a user. Possession of the token
// implies identity; tokens never expire and are removed on logout.
type Session struct {
	ID        uuid.UUID `json:"-" gorm:"type:char(36);primaryKey"`
	UserID    uint      `json:"-" gorm:"index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;size:32;not null"`
	CreatedAt time.Time `json:"-"`
}

// BeforeCreate assigns the row ID before insertion.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
