package handlers

import (
	"github.com/cambfordable/api/database"
	"github.com/cambfordable/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports service and database health
type HealthHandler struct {
	store database.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Storage) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check verifies the database connection and reports status
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database connection failed")
	}

	return response.Success(c, fiber.Map{
		"status": "healthy",
	})
}
