package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/livechat/internal/domain"
)

// JoinQueue handles POST /v1/livechat/queue/join.
// Joining is idempotent while an entry is still waiting.
func (h *Handler) JoinQueue(c echo.Context) error {
	var req domain.JoinQueueRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.CustomerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "customer_id is required"})
	}

	ctx := c.Request().Context()

	entry, err := h.service.JoinQueue(ctx, req.CustomerID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"queue_id": entry.ID,
		"status":   entry.Status,
	})
}

// CancelQueue handles POST /v1/livechat/queue/cancel.
func (h *Handler) CancelQueue(c echo.Context) error {
	var req domain.CancelQueueRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.CustomerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "customer_id is required"})
	}

	ctx := c.Request().Context()

	entry, err := h.service.CancelQueue(ctx, req.CustomerID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":       true,
		"queue_id": entry.ID,
	})
}

// GetQueueStatus handles GET /v1/livechat/queue/status/:customer_id.
// Responds with the customer's most recent queue entry, or null when the
// customer has never queued.
func (h *Handler) GetQueueStatus(c echo.Context) error {
	customerID := c.Param("customer_id")

	ctx := c.Request().Context()

	entry, err := h.service.GetQueueStatus(ctx, customerID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, entry)
}

// ListWaitingQueue handles GET /v1/livechat/queue/waiting.
func (h *Handler) ListWaitingQueue(c echo.Context) error {
	ctx := c.Request().Context()

	entries, err := h.service.ListWaitingQueue(ctx)
	if err != nil {
		return httpError(c, err)
	}

	if entries == nil {
		entries = []domain.QueueEntrySummary{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// DeleteQueueEntry handles DELETE /v1/livechat/queue/:queue_id.
// Administrative removal of an entry regardless of its status.
func (h *Handler) DeleteQueueEntry(c echo.Context) error {
	queueID := c.Param("queue_id")

	ctx := c.Request().Context()

	if err := h.service.DeleteQueueEntry(ctx, queueID); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}

// AcceptQueueEntry handles POST /v1/livechat/accept.
func (h *Handler) AcceptQueueEntry(c echo.Context) error {
	var req domain.AcceptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.OfficialID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "official_id is required"})
	}

	if req.QueueID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "queue_id is required"})
	}

	ctx := c.Request().Context()

	session, err := h.service.AcceptQueueEntry(ctx, req.OfficialID, req.QueueID)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": session.SessionID,
	})
}

// RejectQueueEntry handles POST /v1/livechat/reject.
// Rejecting an entry that already left the waiting state reports ok=false
// instead of failing.
func (h *Handler) RejectQueueEntry(c echo.Context) error {
	var req domain.RejectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.OfficialID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "official_id is required"})
	}

	if req.QueueID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "queue_id is required"})
	}

	ctx := c.Request().Context()

	rejected, err := h.service.RejectQueueEntry(ctx, req.OfficialID, req.QueueID, req.Reason)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": rejected,
	})
}

// EndSession handles POST /v1/livechat/end.
func (h *Handler) EndSession(c echo.Context) error {
	var req domain.EndSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	if req.EndedBy == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ended_by is required"})
	}

	ctx := c.Request().Context()

	if err := h.service.EndSession(ctx, req.SessionID, req.EndedBy); err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}
