package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OneTimeCode is a short code emailed to a user to prove email control.
// Single-use: verification deletes the matched code together with every other
// code of the same user.
type OneTimeCode struct {
	ID        uuid.UUID `json:"-" gorm:"type:char(36);primaryKey"`
	UserID    uint      `json:"-" gorm:"index;not null"`
	Code      string    `json:"-" gorm:"size:5;index;not null"`
	CreatedAt time.Time `json:"-"`
}

// BeforeCreate assigns the row ID before insertion.
func (c *OneTimeCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
