package model

import (
	"time"
)

// LiveClass is a scheduled session belonging to a course
type LiveClass struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CourseID   uint      `gorm:"not null;index" json:"course_id"`
	Title      string    `gorm:"not null" json:"title"`
	StartsAt   time.Time `gorm:"not null" json:"starts_at"`
	EndsAt     time.Time `gorm:"not null" json:"ends_at"`
	MeetingURL string    `gorm:"not null" json:"meeting_url"`

	// Relationships
	Course   Course             `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []LiveClassMessage `gorm:"foreignKey:LiveClassID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsLive reports whether the class is in session at the given instant.
// Live status is always derived from the clock, never stored.
func (lc *LiveClass) IsLive(now time.Time) bool {
	return !now.Before(lc.StartsAt) && !now.After(lc.EndsAt)
}
