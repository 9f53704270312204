package course

import (
	"strconv"
	"strings"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/utils/middleware"
	"github.com/cambfordable/api/utils/response"
	"github.com/cambfordable/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CourseHandler handles course and enrollment requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code" validate:"required"`
	NextClass string `json:"next_class,omitempty"`
	Time      string `json:"time,omitempty"`
}

// EnrolledCourse is a course joined with the caller's enrollment state
type EnrolledCourse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Progress  int    `json:"progress"`
	Completed bool   `json:"completed"`
}

// List returns all courses
func (h *CourseHandler) List(c *fiber.Ctx) error {
	var courses []model.Course
	if err := h.db.Order("id").Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to list courses")
	}
	return response.Success(c, courses)
}

// Create creates a new course (admin only)
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{
		Name:      req.Name,
		Code:      req.Code,
		NextClass: req.NextClass,
		Time:      req.Time,
	}

	if err := h.db.Create(&course).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return response.Conflict(c, "Course code already exists")
		}
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// Enroll enrolls the caller into a course. Enrolling twice is idempotent:
// the existing enrollment row is returned.
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	var existing model.Enrollment
	err = h.db.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&existing).Error
	if err == nil {
		return response.SuccessWithMessage(c, "Already enrolled", existing)
	}
	if err != gorm.ErrRecordNotFound {
		return response.InternalServerError(c, "Failed to check enrollment")
	}

	enrollment := model.Enrollment{
		UserID:   user.ID,
		CourseID: uint(courseID),
	}

	if err := h.db.Create(&enrollment).Error; err != nil {
		// Lost a race against a concurrent enroll; the unique index holds,
		// so return the row that won.
		if strings.Contains(err.Error(), "duplicate key") {
			if err := h.db.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&existing).Error; err == nil {
				return response.SuccessWithMessage(c, "Already enrolled", existing)
			}
		}
		return response.InternalServerError(c, "Failed to enroll")
	}

	return response.SuccessWithMessage(c, "Enrolled successfully", enrollment)
}

// MyCourses returns the caller's enrollments joined with course details
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var enrollments []model.Enrollment
	if err := h.db.Preload("Course").Where("user_id = ?", user.ID).Find(&enrollments).Error; err != nil {
		return response.InternalServerError(c, "Failed to list enrollments")
	}

	courses := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		courses = append(courses, EnrolledCourse{
			ID:        e.Course.ID,
			Name:      e.Course.Name,
			Code:      e.Course.Code,
			Progress:  e.Progress,
			Completed: e.Completed,
		})
	}

	return response.Success(c, courses)
}
