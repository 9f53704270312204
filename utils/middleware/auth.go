package middleware

import (
	"strings"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/utils/auth"
	"github.com/cambfordable/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication. The token subject is a
// username; the matching user row is loaded on every request.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	db         *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		db:         db,
	}
}

// resolveUser validates an access token and loads the corresponding user
func (m *AuthMiddleware) resolveUser(tokenString string) (*model.User, *auth.Claims, error) {
	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	if claims.TokenType != "access" {
		return nil, nil, auth.ErrInvalidToken
	}

	var user model.User
	if err := m.db.Where("username = ?", claims.Subject).First(&user).Error; err != nil {
		return nil, nil, auth.ErrInvalidToken
	}

	return &user, claims, nil
}

// Required is middleware that requires a valid JWT access token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		user, claims, err := m.resolveUser(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Could not validate credentials")
		}

		// Store user info and full user object in context
		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("claims", claims)
		c.Locals("user", user)

		return c.Next()
	}
}

// RequireAdmin is middleware that requires an authenticated admin. It must
// run after Required.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		if !user.IsAdmin {
			return response.Forbidden(c, "Admin privileges required")
		}

		return c.Next()
	}
}

// ResolveWebSocketUser authenticates a WebSocket handshake. Browsers cannot
// set headers during the handshake, so the token travels as a query
// parameter. Returns nil when the token is missing, invalid, expired, or the
// subject no longer exists; the caller closes the socket with a policy
// violation code.
func (m *AuthMiddleware) ResolveWebSocketUser(token string) *model.User {
	if token == "" {
		return nil
	}

	user, _, err := m.resolveUser(token)
	if err != nil {
		return nil
	}

	return user
}

// GetUser extracts the full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}
