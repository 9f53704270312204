package user

import (
	"time"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserHandler handles user administration requests
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// UserListItem is a single user in the admin listing
type UserListItem struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns all users (admin only)
func (h *UserHandler) List(c *fiber.Ctx) error {
	var users []model.User
	if err := h.db.Order("id").Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserListItem{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FullName:  u.FullName,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt,
		})
	}

	return response.Success(c, items)
}
