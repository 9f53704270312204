package liveclass

import (
	"strconv"
	"strings"
	"time"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/utils/middleware"
	"github.com/cambfordable/api/utils/response"
	"github.com/cambfordable/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LiveClassHandler handles live class requests
type LiveClassHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewLiveClassHandler creates a new live class handler
func NewLiveClassHandler(db *gorm.DB) *LiveClassHandler {
	return &LiveClassHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateLiveClassRequest represents a live class creation request
type CreateLiveClassRequest struct {
	CourseID   uint      `json:"course_id" validate:"required"`
	Title      string    `json:"title" validate:"required"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required"`
	MeetingURL string    `json:"meeting_url" validate:"required,url"`
}

// LiveClassResponse is a live class with its derived live flag. The flag is
// computed at read time, never stored.
type LiveClassResponse struct {
	ID         uint      `json:"id"`
	CourseID   uint      `json:"course_id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	MeetingURL string    `json:"meeting_url"`
	IsLive     bool      `json:"is_live"`
}

// JoinResponse is returned to a user admitted to a live class
type JoinResponse struct {
	ZoomURL  string    `json:"zoom_url"`
	StartsAt time.Time `json:"starts_at"`
}

func toLiveClassResponse(lc *model.LiveClass, now time.Time) LiveClassResponse {
	return LiveClassResponse{
		ID:         lc.ID,
		CourseID:   lc.CourseID,
		Title:      lc.Title,
		StartsAt:   lc.StartsAt,
		EndsAt:     lc.EndsAt,
		MeetingURL: lc.MeetingURL,
		IsLive:     lc.IsLive(now),
	}
}

// Create schedules a new live class (admin only)
func (h *LiveClassHandler) Create(c *fiber.Ctx) error {
	var req CreateLiveClassRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if !req.EndsAt.After(req.StartsAt) {
		return response.BadRequest(c, "ends_at must be after starts_at")
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	liveClass := model.LiveClass{
		CourseID:   req.CourseID,
		Title:      req.Title,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		MeetingURL: req.MeetingURL,
	}

	if err := h.db.Create(&liveClass).Error; err != nil {
		return response.InternalServerError(c, "Failed to create live class")
	}

	return response.Created(c, toLiveClassResponse(&liveClass, time.Now().UTC()))
}

// List returns all live classes (admin only)
func (h *LiveClassHandler) List(c *fiber.Ctx) error {
	var liveClasses []model.LiveClass
	if err := h.db.Order("starts_at").Find(&liveClasses).Error; err != nil {
		return response.InternalServerError(c, "Failed to list live classes")
	}

	now := time.Now().UTC()
	items := make([]LiveClassResponse, 0, len(liveClasses))
	for i := range liveClasses {
		items = append(items, toLiveClassResponse(&liveClasses[i], now))
	}

	return response.Success(c, items)
}

// MyClasses returns live classes for the caller's enrolled courses
func (h *LiveClassHandler) MyClasses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var liveClasses []model.LiveClass
	err := h.db.
		Joins("JOIN enrollments ON enrollments.course_id = live_classes.course_id").
		Where("enrollments.user_id = ?", user.ID).
		Order("live_classes.starts_at").
		Find(&liveClasses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to list live classes")
	}

	now := time.Now().UTC()
	items := make([]LiveClassResponse, 0, len(liveClasses))
	for i := range liveClasses {
		items = append(items, toLiveClassResponse(&liveClasses[i], now))
	}

	return response.Success(c, items)
}

// Join admits the caller into a live class after the three-stage access
// check and hands back the meeting URL.
func (h *LiveClassHandler) Join(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}

	liveClass, err := Joinable(h.db, user, uint(classID), time.Now().UTC())
	if err != nil {
		switch err {
		case ErrClassNotFound:
			return response.NotFound(c, "Class not found")
		case ErrNotEnrolled, ErrNotStarted, ErrEnded:
			return response.Forbidden(c, capitalize(err.Error()))
		default:
			return response.InternalServerError(c, "Failed to load live class")
		}
	}

	return response.Success(c, JoinResponse{
		ZoomURL:  liveClass.MeetingURL,
		StartsAt: liveClass.StartsAt,
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
