package v1

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/livechat/internal/domain"
	"github.com/xiaot623/livechat/internal/hub"
)

// CustomerEvents handles GET /v1/livechat/sse/customer/:customer_id.
// Long-lived SSE stream carrying the customer's queue and session events.
func (h *Handler) CustomerEvents(c echo.Context) error {
	customerID := c.Param("customer_id")
	if customerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "customer_id is required"})
	}

	sub := h.notif.RegisterCustomer(customerID)
	defer h.notif.UnregisterCustomer(customerID, sub)

	return h.streamEvents(c, sub, customerID)
}

// OfficialEvents handles GET /v1/livechat/sse/official/:official_id.
// Officials additionally receive the queue_updated broadcasts.
func (h *Handler) OfficialEvents(c echo.Context) error {
	officialID := c.Param("official_id")
	if officialID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "official_id is required"})
	}

	sub := h.notif.RegisterOfficial(officialID)
	defer h.notif.UnregisterOfficial(officialID, sub)

	return h.streamEvents(c, sub, officialID)
}

// streamEvents drains the subscriber to the wire until the client
// disconnects or the hub prunes the subscriber. Heartbeats keep
// intermediaries from timing out idle streams.
func (h *Handler) streamEvents(c echo.Context, sub *hub.Subscriber, userID string) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	connected := domain.NewPushEvent(domain.EventTypeConnected, map[string]string{"user_id": userID})
	if err := writeEvent(res, connected); err != nil {
		return nil
	}
	res.Flush()

	heartbeat := time.NewTicker(h.config.SSEHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				// The hub closed the channel after a failed delivery.
				return nil
			}
			if err := writeEvent(res, ev); err != nil {
				return nil
			}
			res.Flush()
		case <-heartbeat.C:
			ping := domain.NewPushEvent(domain.EventTypePing, nil)
			if err := writeEvent(res, ping); err != nil {
				return nil
			}
			res.Flush()
		case <-ctx.Done():
			return nil
		}
	}
}

// writeEvent writes one SSE frame.
func writeEvent(w io.Writer, ev domain.PushEvent) error {
	data := ev.Data
	if len(data) == 0 {
		data = []byte("{}")
	}
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, data)
	return err
}
