package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string         `json:"full_name,omitempty"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`

	// Relationships
	Enrollments    []Enrollment         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Submissions    []HomeworkSubmission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Messages       []LiveClassMessage   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Payments       []PaymentTransaction `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
