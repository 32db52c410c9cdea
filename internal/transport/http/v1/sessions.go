package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/livechat/internal/domain"
)

// ListOfficialSessions handles GET /v1/officials/:official_id/sessions.
// Returns the official's active live sessions, oldest first.
func (h *Handler) ListOfficialSessions(c echo.Context) error {
	officialID := c.Param("official_id")

	ctx := c.Request().Context()

	sessions, err := h.service.ListActiveSessions(ctx, officialID)
	if err != nil {
		return httpError(c, err)
	}

	if sessions == nil {
		sessions = []domain.SessionSummary{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// ListUserSessions handles GET /v1/users/:user_id/sessions.
// Returns the customer's session history, newest first, with message
// previews.
func (h *Handler) ListUserSessions(c echo.Context) error {
	userID := c.Param("user_id")

	ctx := c.Request().Context()

	sessions, err := h.service.ListCustomerSessions(ctx, userID)
	if err != nil {
		return httpError(c, err)
	}

	if sessions == nil {
		sessions = []domain.SessionSummary{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// GetSessionMessages handles GET /v1/sessions/:session_id/messages.
// An absent or non-positive limit returns the full history.
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")

	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		}
	}

	ctx := c.Request().Context()

	messages, err := h.service.GetSessionMessages(ctx, sessionID, limit)
	if err != nil {
		return httpError(c, err)
	}

	if messages == nil {
		messages = []domain.Message{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// CreateSession handles POST /v1/sessions. Used for chatbot-mode
// bookkeeping; live sessions are created through the accept flow.
func (h *Handler) CreateSession(c echo.Context) error {
	var req domain.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	sessionType := domain.SessionType(req.SessionType)
	if sessionType == "" {
		sessionType = domain.SessionTypeChatbot
	}
	if sessionType != domain.SessionTypeChatbot && sessionType != domain.SessionTypeLive {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_type must be chatbot or live"})
	}

	ctx := c.Request().Context()

	session, err := h.service.CreateChatSession(ctx, req.UserID, sessionType)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, session)
}

// DeleteSession handles DELETE /v1/sessions/:session_id. When a user_id
// query parameter is present the caller must be a participant.
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	userID := c.QueryParam("user_id")

	ctx := c.Request().Context()

	if err := h.service.DeleteChatSession(ctx, sessionID, userID); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}
