package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a named, uniquely-coded offering students can enroll in
type Course struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Code      string         `gorm:"uniqueIndex;not null" json:"code"`
	NextClass string         `json:"next_class,omitempty"` // display-only schedule hint
	Time      string         `json:"time,omitempty"`

	// Relationships
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	LiveClasses []LiveClass  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Homeworks   []Homework   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}
