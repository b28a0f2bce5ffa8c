package models

import "time"

type Pastexam struct {
	ID          string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Title       string        `json:"title" gorm:"not null;type:varchar(255)" validate:"required,max=255"`
	Content     string        `json:"content" gorm:"type:text" validate:"max=65535"`
	AuthorID    string        `json:"author_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	IsPinned    bool          `json:"is_pinned" gorm:"default:false"`
	IsPublic    bool          `json:"is_public" gorm:"default:false"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	Author      *User         `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
	Attachments []*Attachment `json:"attachments,omitempty" gorm:"foreignKey:PastexamID"`
}

// Attachment maps an uploaded file's original name to its on-disk name.
type Attachment struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	PastexamID   string    `json:"pastexam_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Filename     string    `json:"filename" gorm:"not null"`
	RealFilename string    `json:"-" gorm:"not null"`
	Position     int       `json:"position" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
