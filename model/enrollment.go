package model

import "time"

// Enrollment joins a user to a course. The (user_id, course_id) pair is
// unique; enrolling twice returns the existing row.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Progress   int       `gorm:"not null;default:0" json:"progress"`
	Completed  bool      `gorm:"not null;default:false" json:"completed"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
