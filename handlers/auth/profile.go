package auth

import (
	"github.com/cambfordable/api/utils/middleware"
	"github.com/cambfordable/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, toUserResponse(user))
}
