// Package v1 provides the external HTTP handlers for the livechat engine.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/livechat/internal/config"
	"github.com/xiaot623/livechat/internal/domain"
	"github.com/xiaot623/livechat/internal/hub"
	"github.com/xiaot623/livechat/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	notif   *hub.NotifHub
	chat    *hub.ChatHub
	config  *config.Config
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, notif *hub.NotifHub, chat *hub.ChatHub, config *config.Config) *Handler {
	return &Handler{
		service: service,
		notif:   notif,
		chat:    chat,
		config:  config,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Queue API (customer side)
	e.POST("/v1/livechat/queue/join", h.JoinQueue)
	e.POST("/v1/livechat/queue/cancel", h.CancelQueue)
	e.GET("/v1/livechat/queue/status/:customer_id", h.GetQueueStatus)

	// Queue API (official side)
	e.GET("/v1/livechat/queue/waiting", h.ListWaitingQueue)
	e.DELETE("/v1/livechat/queue/:queue_id", h.DeleteQueueEntry)
	e.POST("/v1/livechat/accept", h.AcceptQueueEntry)
	e.POST("/v1/livechat/reject", h.RejectQueueEntry)
	e.POST("/v1/livechat/end", h.EndSession)

	// Session API
	e.GET("/v1/officials/:official_id/sessions", h.ListOfficialSessions)
	e.GET("/v1/users/:user_id/sessions", h.ListUserSessions)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)
	e.POST("/v1/sessions", h.CreateSession)
	e.DELETE("/v1/sessions/:session_id", h.DeleteSession)

	// Notification streams
	e.GET("/v1/livechat/sse/customer/:customer_id", h.CustomerEvents)
	e.GET("/v1/livechat/sse/official/:official_id", h.OfficialEvents)

	e.GET("/health", h.Health)
}

// Health returns health status along with hub occupancy counts.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"version":          "0.1.0",
		"chat_connections": h.chat.GetConnectionCount(),
		"chat_sessions":    h.chat.GetSessionCount(),
		"sse_customers":    h.notif.GetCustomerCount(),
		"sse_officials":    h.notif.GetOfficialCount(),
	})
}

// httpError maps a service error onto an HTTP status and a stable error
// code. Anything unclassified is reported as a database failure.
func httpError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	code := "DATABASE_ERROR"
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		status, code = http.StatusNotFound, "CUSTOMER_NOT_FOUND"
	case errors.Is(err, domain.ErrQueueNotFound):
		status, code = http.StatusNotFound, "QUEUE_NOT_FOUND"
	case errors.Is(err, domain.ErrOfficialNotFound):
		status, code = http.StatusNotFound, "OFFICIAL_NOT_FOUND"
	case errors.Is(err, domain.ErrSessionNotFound):
		status, code = http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, domain.ErrCustomerBanned):
		status, code = http.StatusForbidden, "CUSTOMER_BANNED"
	case errors.Is(err, domain.ErrNotSessionParticipant):
		status, code = http.StatusForbidden, "NOT_SESSION_PARTICIPANT"
	case errors.Is(err, domain.ErrQueueNotAvailable):
		status, code = http.StatusConflict, "QUEUE_NOT_AVAILABLE"
	case errors.Is(err, domain.ErrMaxSessionsReached):
		status, code = http.StatusConflict, "MAX_SESSIONS_REACHED"
	case errors.Is(err, domain.ErrSessionAlreadyEnded):
		status, code = http.StatusConflict, "SESSION_ALREADY_ENDED"
	case errors.Is(err, domain.ErrNoPendingRequest):
		status, code = http.StatusConflict, "NO_PENDING_REQUEST"
	case errors.Is(err, domain.ErrInternal):
		code = "INTERNAL_ERROR"
	}
	return c.JSON(status, map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}
