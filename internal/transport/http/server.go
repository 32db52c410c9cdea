// Package http provides the HTTP server implementation for the livechat engine.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/xiaot623/livechat/internal/config"
	"github.com/xiaot623/livechat/internal/hub"
	"github.com/xiaot623/livechat/internal/service"
	v1 "github.com/xiaot623/livechat/internal/transport/http/v1"
	"github.com/xiaot623/livechat/internal/ws"
)

// NewServer creates and configures the HTTP server. A single listener
// carries the REST API, the SSE notification streams, and the chat
// WebSocket endpoint.
func NewServer(svc *service.Service, notif *hub.NotifHub, chat *hub.ChatHub, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, notif, chat, cfg)
	wsServer := ws.NewServer(cfg, chat, svc)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	e.GET("/ws/chat/:session_id", wsServer.HandleChat)

	return e
}
