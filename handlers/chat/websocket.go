package chat

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/cambfordable/api/handlers/liveclass"
	"github.com/cambfordable/api/model"
	"github.com/cambfordable/api/services/relay"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Upgrade rejects plain HTTP requests on the WebSocket route
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// closePolicy terminates the socket with a policy-violation close frame.
// There is no HTTP response channel once the socket is open, so every
// auth/authorization failure ends here.
func closePolicy(conn *websocket.Conn) {
	conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""),
	)
}

// LiveClassChat is the chat WebSocket for one live class. The token rides a
// query parameter because browsers cannot set headers during the handshake.
func (h *ChatHandler) LiveClassChat() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		classID, err := strconv.ParseUint(conn.Params("id"), 10, 32)
		if err != nil {
			closePolicy(conn)
			return
		}

		user := h.authMw.ResolveWebSocketUser(conn.Query("token"))
		if user == nil {
			closePolicy(conn)
			return
		}

		liveClass, err := liveclass.Joinable(h.db, user, uint(classID), time.Now().UTC())
		if err != nil {
			closePolicy(conn)
			return
		}

		if err := h.relay.Join(liveClass.ID, conn, user.ID, user.IsAdmin); err != nil {
			log.Printf("chat: broker subscription for class %d failed: %v", liveClass.ID, err)
			closePolicy(conn)
			return
		}
		defer h.relay.Leave(liveClass.ID, conn)

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.TextMessage || len(data) == 0 {
				continue
			}

			// Rate limit: silently drop messages arriving within a second
			// of the user's last accepted one.
			if !h.relay.AllowMessage(user.ID) {
				continue
			}

			msg := model.LiveClassMessage{
				LiveClassID: liveClass.ID,
				UserID:      user.ID,
				Message:     string(data),
			}
			if err := h.db.Create(&msg).Error; err != nil {
				log.Printf("chat: failed to persist message for class %d: %v", liveClass.ID, err)
				continue
			}

			payload := relay.Message{
				ID:        msg.ID,
				UserID:    user.ID,
				Message:   msg.Message,
				CreatedAt: msg.CreatedAt,
				IsAdmin:   user.IsAdmin,
			}
			if err := h.relay.Publish(context.Background(), liveClass.ID, payload); err != nil {
				log.Printf("chat: failed to publish message %d: %v", msg.ID, err)
			}
		}
	})
}
