package models

import "time"

type User struct {
	ID                       string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Username                 string     `json:"username" gorm:"uniqueIndex;not null" validate:"required,min=3,max=20"`
	EncryptedPassword        string     `json:"-" gorm:"not null" validate:"required"`
	Nickname                 string     `json:"nickname" gorm:"not null" validate:"required,max=20"`
	Realname                 string     `json:"realname" gorm:"not null" validate:"required,max=20"`
	Email                    string     `json:"email" gorm:"uniqueIndex;not null;type:varchar(330)" validate:"required,email"`
	Admin                    bool       `json:"admin" gorm:"default:false"`
	ResetPasswordToken       *string    `json:"-" gorm:"index"`
	ResetPasswordTokenSentAt *time.Time `json:"-"`
	LastLoginAt              *time.Time `json:"last_login_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt                time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
