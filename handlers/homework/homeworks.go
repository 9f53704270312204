package homework

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/services/storage"
	"github.com/cambfordable/api/utils/middleware"
	"github.com/cambfordable/api/utils/response"
	"github.com/cambfordable/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HomeworkHandler handles homework and submission requests
type HomeworkHandler struct {
	db        *gorm.DB
	uploader  storage.Uploader
	validator *validation.Validator
}

// NewHomeworkHandler creates a new homework handler. The uploader may be nil
// when no object storage is configured; submissions then record a
// placeholder path.
func NewHomeworkHandler(db *gorm.DB, uploader storage.Uploader) *HomeworkHandler {
	return &HomeworkHandler{
		db:        db,
		uploader:  uploader,
		validator: validation.NewValidator(),
	}
}

// CreateHomeworkRequest represents a homework creation request
type CreateHomeworkRequest struct {
	CourseID    uint      `json:"course_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// Create creates a new homework (admin only)
func (h *HomeworkHandler) Create(c *fiber.Ctx) error {
	var req CreateHomeworkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	homework := model.Homework{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	if err := h.db.Create(&homework).Error; err != nil {
		return response.InternalServerError(c, "Failed to create homework")
	}

	return response.Created(c, homework)
}

// ListByCourse returns all homeworks for a course
func (h *HomeworkHandler) ListByCourse(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("courseID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var homeworks []model.Homework
	if err := h.db.Where("course_id = ?", courseID).Order("due_date").Find(&homeworks).Error; err != nil {
		return response.InternalServerError(c, "Failed to list homeworks")
	}

	return response.Success(c, homeworks)
}

// Submit records a new submission for a homework. Every call inserts a new
// row; earlier submissions by the same user are kept.
func (h *HomeworkHandler) Submit(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	homeworkID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid homework ID")
	}

	var homework model.Homework
	if err := h.db.First(&homework, homeworkID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Homework not found")
		}
		return response.InternalServerError(c, "Failed to load homework")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file is required")
	}

	now := time.Now().UTC()
	fileURL := fmt.Sprintf("/uploads/%s", fileHeader.Filename)

	if h.uploader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return response.InternalServerError(c, "Failed to read uploaded file")
		}
		defer file.Close()

		key := fmt.Sprintf("homework/%d/%d/%d_%s", homework.ID, user.ID, now.Unix(), fileHeader.Filename)
		contentType := fileHeader.Header.Get("Content-Type")

		fileURL, err = h.uploader.UploadFile(c.Context(), key, file, contentType)
		if err != nil {
			return response.InternalServerError(c, "Failed to store uploaded file")
		}
	}

	submission := model.HomeworkSubmission{
		HomeworkID:  homework.ID,
		UserID:      user.ID,
		FileURL:     fileURL,
		SubmittedAt: now,
	}

	if err := h.db.Create(&submission).Error; err != nil {
		return response.InternalServerError(c, "Failed to record submission")
	}

	return response.Created(c, submission)
}

// MySubmissions returns the caller's submissions
func (h *HomeworkHandler) MySubmissions(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var submissions []model.HomeworkSubmission
	if err := h.db.Where("user_id = ?", user.ID).Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return response.InternalServerError(c, "Failed to list submissions")
	}

	return response.Success(c, submissions)
}

// Submissions returns all submissions for a homework (admin only)
func (h *HomeworkHandler) Submissions(c *fiber.Ctx) error {
	homeworkID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid homework ID")
	}

	var homework model.Homework
	if err := h.db.First(&homework, homeworkID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Homework not found")
		}
		return response.InternalServerError(c, "Failed to load homework")
	}

	var submissions []model.HomeworkSubmission
	if err := h.db.Where("homework_id = ?", homeworkID).Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return response.InternalServerError(c, "Failed to list submissions")
	}

	return response.Success(c, submissions)
}
