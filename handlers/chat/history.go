package chat

import (
	"strconv"

	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/services/relay"
	"github.com/cambfordable/api/utils/middleware"
	"github.com/cambfordable/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HistoryLimit is how many recent messages the history endpoint returns
const HistoryLimit = 50

// ChatHandler handles chat history and the live-class WebSocket
type ChatHandler struct {
	db     *gorm.DB
	relay  *relay.Relay
	authMw *middleware.AuthMiddleware
}

// NewChatHandler creates a new chat handler
func NewChatHandler(db *gorm.DB, r *relay.Relay, authMw *middleware.AuthMiddleware) *ChatHandler {
	return &ChatHandler{
		db:     db,
		relay:  r,
		authMw: authMw,
	}
}

// History returns the last messages for a live class, oldest first. The
// query fetches newest-first under the limit, then the slice is reversed
// for display order.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	liveClassID, err := strconv.ParseUint(c.Params("liveClassID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid live class ID")
	}

	var liveClass model.LiveClass
	if err := h.db.First(&liveClass, liveClassID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Class not found")
		}
		return response.InternalServerError(c, "Failed to load live class")
	}

	var messages []model.LiveClassMessage
	err = h.db.
		Where("live_class_id = ?", liveClassID).
		Order("created_at DESC").
		Limit(HistoryLimit).
		Find(&messages).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load messages")
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return response.Success(c, messages)
}
