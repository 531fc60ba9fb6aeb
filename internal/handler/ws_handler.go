package handler

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"agristock/internal/ws"
	"agristock/pkg/jwt"
)

// WSHandler streams collection snapshots to websocket clients. A client
// sends {"subscribe":"products"} and receives the current snapshot and every
// committed change after it.
type WSHandler struct {
	hub          *ws.Hub
	authenticate func(token string) (*jwt.Claims, error)
}

func NewWSHandler(hub *ws.Hub, authenticate func(string) (*jwt.Claims, error)) *WSHandler {
	return &WSHandler{hub: hub, authenticate: authenticate}
}

type subscribeMessage struct {
	Subscribe string `json:"subscribe"`
}

// Upgrade rejects plain HTTP requests and, when authentication is wired,
// requests without a valid ?token=
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
	if h.authenticate != nil {
		if _, err := h.authenticate(c.Query("token")); err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
	}
	return c.Next()
}

func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		h.hub.Register <- c
		defer func() { h.hub.Unregister <- c }()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			var req subscribeMessage
			if err := json.Unmarshal(msg, &req); err != nil {
				continue
			}
			if collection, ok := ws.ParseCollection(req.Subscribe); ok {
				h.hub.Subscribe(c, collection)
			}
		}
	})
}
