package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/livechat/internal/domain"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestCustomerEventsStream(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/livechat/sse/customer/u_alice", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("customer_id")
	c.SetParamValues("u_alice")

	done := make(chan error, 1)
	go func() {
		done <- h.CustomerEvents(c)
	}()

	waitFor(t, func() bool { return h.notif.GetCustomerCount() == 1 })

	h.notif.SendToCustomer("u_alice", domain.NewPushEvent(domain.EventTypeQueued, domain.QueuedData{QueueID: "q_1", Status: domain.QueueStatusWaiting}))

	// Give the stream loop time to drain the event before disconnecting.
	time.Sleep(200 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: connected") {
		t.Fatalf("missing connected frame: %q", body)
	}
	if !strings.Contains(body, "event: queued") || !strings.Contains(body, `"queue_id":"q_1"`) {
		t.Fatalf("missing queued frame: %q", body)
	}

	// Disconnect removed the subscription
	waitFor(t, func() bool { return h.notif.GetCustomerCount() == 0 })

	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestOfficialEventsHeartbeat(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)
	h.config.SSEHeartbeat = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/livechat/sse/official/o_dana", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("official_id")
	c.SetParamValues("o_dana")

	done := make(chan error, 1)
	go func() {
		done <- h.OfficialEvents(c)
	}()

	waitFor(t, func() bool { return h.notif.GetOfficialCount() == 1 })

	h.notif.SendToAllOfficials(domain.NewPushEvent(domain.EventTypeQueueUpdated, nil))

	time.Sleep(200 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: ping") {
		t.Fatalf("missing heartbeat frames: %q", body)
	}
	if !strings.Contains(body, "event: queue_updated") {
		t.Fatalf("missing queue_updated frame: %q", body)
	}
}
