package liveclass

import (
	"errors"
	"time"

	"github.com/cambfordable/api/model"
	"gorm.io/gorm"
)

var (
	ErrClassNotFound = errors.New("class not found")
	ErrNotEnrolled   = errors.New("you are not enrolled in this course")
	ErrNotStarted    = errors.New("class has not started yet")
	ErrEnded         = errors.New("class has ended")
)

// Joinable runs the three-stage access check shared by the REST join
// endpoint and the chat WebSocket: the class must exist, the user must be
// enrolled in its course, and the clock must be inside the class window.
// Admins skip the enrollment and window stages but the class must exist.
func Joinable(db *gorm.DB, user *model.User, classID uint, now time.Time) (*model.LiveClass, error) {
	var liveClass model.LiveClass
	if err := db.First(&liveClass, classID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if user.IsAdmin {
		return &liveClass, nil
	}

	var enrollment model.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", user.ID, liveClass.CourseID).First(&enrollment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}

	if now.Before(liveClass.StartsAt) {
		return nil, ErrNotStarted
	}
	if now.After(liveClass.EndsAt) {
		return nil, ErrEnded
	}

	return &liveClass, nil
}
