package model

import "time"

// ProjectType identifies the editor a project was made with.
type ProjectType string

const (
	ProjectTypeRobot  ProjectType = "robot"
	ProjectTypeCanvas ProjectType = "canvas"
)

// Project is a user-owned content record. Code is the public identifier,
// immutable once assigned. The owner is referenced both by ID and by
// denormalized name; visibility checks compare names.
type Project struct {
	ID           uint        `json:"-" gorm:"primaryKey"`
	Code         string      `json:"code" gorm:"uniqueIndex;size:6;not null"`
	UserID       uint        `json:"-" gorm:"index;not null"`
	UserName     string      `json:"userName" gorm:"index;size:25;not null"`
	Title        string      `json:"title" gorm:"size:255;not null"`
	Description  string      `json:"description" gorm:"type:text"`
	Content      string      `json:"content,omitempty" gorm:"type:longtext"`
	IsPublic     bool        `json:"public" gorm:"column:public;default:false;index"`
	Type         ProjectType `json:"type" gorm:"size:10;not null;default:'robot'"`
	IsFeatured   bool        `json:"featured" gorm:"column:featured;default:false;index"`
	CreatedAt    time.Time   `json:"created"`
	LastModified time.Time   `json:"lastModified" gorm:"autoUpdateTime;index"`
}
