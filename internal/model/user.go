package model

import "time"

// UserType distinguishes regular users from admins.
type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeAdmin UserType = "admin"
)

// User represents a registered account. Users never hold a password; identity
// is proven by email-delivered one-time codes.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:25;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Type      UserType  `json:"type" gorm:"size:10;not null;default:'user'"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user has admin privileges.
func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}
