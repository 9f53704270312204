package model

import (
	"time"
)

// Homework is an assignment attached to a course
type Homework struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`

	// Relationships
	Course      Course               `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Submissions []HomeworkSubmission `gorm:"foreignKey:HomeworkID;constraint:OnDelete:CASCADE" json:"-"`
}

// HomeworkSubmission is one user's uploaded file for one homework.
// There is no uniqueness constraint: every submission is retained.
type HomeworkSubmission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HomeworkID  uint      `gorm:"not null;index" json:"homework_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	FileURL     string    `gorm:"not null" json:"file_url"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`

	// Relationships
	Homework Homework `gorm:"foreignKey:HomeworkID;constraint:OnDelete:CASCADE" json:"-"`
	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
