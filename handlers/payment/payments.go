package payment

import (
	"encoding/json"
	"strconv"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/services/payment"
	"github.com/cambfordable/api/utils/middleware"
	"github.com/cambfordable/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultCourseAmountPaisa is the flat course fee in paisa (PKR 2000).
// Per-course pricing is not modelled yet.
const DefaultCourseAmountPaisa int64 = 200000

// PaymentHandler handles JazzCash payment initiation
type PaymentHandler struct {
	db  *gorm.DB
	svc *payment.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(db *gorm.DB, svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{
		db:  db,
		svc: svc,
	}
}

// InitiateResponse is handed to the client, which posts the payload to the
// gateway form itself.
type InitiateResponse struct {
	TxnRef     string            `json:"txn_ref"`
	PaymentURL string            `json:"payment_url"`
	Payload    map[string]string `json:"payload"`
}

// InitiateCoursePayment builds a signed wallet payload for a course purchase
// and records the transaction as initiated.
func (h *PaymentHandler) InitiateCoursePayment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("courseID"), 10, 32)
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

	payload := h.svc.BuildCoursePayload(course.ID, user.ID, DefaultCourseAmountPaisa)

	fields, err := json.Marshal(payload.Fields)
	if err != nil {
		return response.InternalServerError(c, "Failed to encode payment payload")
	}

	txn := model.PaymentTransaction{
		UserID:      user.ID,
		CourseID:    course.ID,
		TxnRef:      payload.TxnRef,
		AmountPaisa: DefaultCourseAmountPaisa,
		Currency:    "PKR",
		Status:      "initiated",
		Payload:     datatypes.JSON(fields),
	}
	if err := h.db.Create(&txn).Error; err != nil {
		return response.InternalServerError(c, "Failed to record transaction")
	}

	return response.Success(c, InitiateResponse{
		TxnRef:     payload.TxnRef,
		PaymentURL: payload.PaymentURL,
		Payload:    payload.Fields,
	})
}

// MyTransactions returns the caller's payment transactions, newest first
func (h *PaymentHandler) MyTransactions(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var txns []model.PaymentTransaction
	if err := h.db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&txns).Error; err != nil {
		return response.InternalServerError(c, "Failed to list transactions")
	}

	return response.Success(c, txns)
}
