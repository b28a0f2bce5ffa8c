package models

import "time"

// Registration is one user's sign-up for one contest year. Score and rank stay
// empty until the administrator imports the official results.
type Registration struct {
	ID                string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	RegistrantID      string    `json:"registrant_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	StudentID         string    `json:"student_id" gorm:"not null;type:varchar(6)" validate:"required,len=6,numeric"`
	ClassSeat         string    `json:"class_seat" gorm:"not null;type:varchar(5)" validate:"required,len=5,numeric"`
	EncryptedPassword string    `json:"-" gorm:"not null"`
	VerificationCode  string    `json:"verification_code" gorm:"not null;type:varchar(6)"`
	RegisterYear      int       `json:"register_year" gorm:"not null;index"`
	Score             *float64  `json:"score,omitempty" gorm:"type:decimal(5,2)"`
	Rank              *int      `json:"rank,omitempty"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
	Registrant        *User     `json:"registrant,omitempty" gorm:"foreignKey:RegistrantID;references:ID"`
}
